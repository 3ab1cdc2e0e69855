package checkpoint

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwantia/costquery/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Invalidator forces a custom field fingerprint check, *costquery.Generator implements it
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var checkpoints = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "costquery_checkpoints_total",
		Help: "Cache checkpoints received, partitioned by source and outcome",
	},
	[]string{"source", "outcome"},
)

func trigger(ctx context.Context, target Invalidator, logger log.LoggerService, source, reason string) {
	if err := target.Invalidate(ctx); err != nil {
		checkpoints.WithLabelValues(source, "error").Inc()
		logger.Error("Checkpoint from %s failed: %v", source, err)
		return
	}

	checkpoints.WithLabelValues(source, "ok").Inc()
	if reason != "" {
		logger.Info("Checkpoint from %s: %s", source, reason)
	} else {
		logger.Info("Checkpoint from %s", source)
	}
}

// WatchSignals invalidates target on every SIGHUP until ctx is done
func WatchSignals(ctx context.Context, target Invalidator, logger log.LoggerService) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	defer signal.Stop(signals)

	watch(ctx, signals, target, logger)
}

func watch(ctx context.Context, signals <-chan os.Signal, target Invalidator, logger log.LoggerService) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			trigger(ctx, target, logger, "signal", sig.String())
		}
	}
}
