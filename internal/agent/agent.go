package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/costquery/internal/checkpoint"
	config "github.com/mwantia/costquery/internal/config/server"
	"github.com/mwantia/costquery/pkg/costquery"
	"github.com/mwantia/costquery/pkg/db/store"
	"github.com/mwantia/costquery/pkg/log"
	"github.com/mwantia/fabric/pkg/container"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CostQueryAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store     *store.GormStore
	generator *costquery.Generator
	engine    *costquery.Engine
	listener  *checkpoint.Listener
	metrics   *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *CostQueryAgent {
	return &CostQueryAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("agent", cfg.Log),
	}
}

func (cqa *CostQueryAgent) setupServices(ctx context.Context) error {
	st, err := OpenStore(ctx, cqa.cfg.Store)
	if err != nil {
		return err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	cqa.store = st
	cqa.engine, cqa.generator = NewEngine(cqa.cfg, st, cqa.log)

	// Build the first generation now so malformed fields are reported on startup
	if err := cqa.generator.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to generate custom field filters: %w", err)
	}

	errs := container.Errors{}

	cqa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](cqa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(cqa.log)))

	cqa.log.Debug("Registering 'Store' (%s)...", st.Dialect())
	errs.Add(container.Register[store.GormStore](cqa.sc,
		container.With[store.Store](),
		container.WithInstance(cqa.store)))

	cqa.log.Debug("Registering 'Generator'...")
	errs.Add(container.Register[costquery.Generator](cqa.sc,
		container.With[checkpoint.Invalidator](),
		container.WithInstance(cqa.generator)))

	cqa.log.Debug("Registering 'QueryEngine'...")
	errs.Add(container.Register[costquery.Engine](cqa.sc,
		container.With[QueryEngine](),
		container.WithInstance(cqa.engine)))

	return errs.Errors()
}

func (cqa *CostQueryAgent) setupCheckpoints(ctx context.Context) error {
	logger, err := log.Resolve(ctx, cqa.sc, "checkpoint")
	if err != nil {
		return err
	}

	if cqa.cfg.Checkpoint.Signal {
		cqa.wait.Add(1)
		go func() {
			defer cqa.wait.Done()
			checkpoint.WatchSignals(ctx, cqa.generator, logger)
		}()
	}

	if cqa.cfg.Checkpoint.Redis.Addr == "" {
		return nil
	}

	rc, err := checkpoint.NewRedisClient(ctx, cqa.cfg.Checkpoint.Redis)
	if err != nil {
		return err
	}

	cqa.listener = checkpoint.NewListener(rc, cqa.cfg.Checkpoint.Redis.Channel, cqa.generator, logger)
	cqa.wait.Add(1)
	go func() {
		defer cqa.wait.Done()
		if err := cqa.listener.Run(ctx); err != nil {
			cqa.log.Error("Checkpoint listener stopped: %v", err)
		}
	}()

	return nil
}

func (cqa *CostQueryAgent) setupMetrics() {
	if cqa.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(cqa.cfg.Metrics.Path, promhttp.Handler())
	cqa.metrics = &http.Server{
		Addr:              cqa.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	cqa.wait.Add(1)
	go func() {
		defer cqa.wait.Done()
		cqa.log.Info("Serving metrics on '%s%s'", cqa.cfg.Metrics.Addr, cqa.cfg.Metrics.Path)
		if err := cqa.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cqa.log.Error("Metrics server failed: %v", err)
		}
	}()
}

func (cqa *CostQueryAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := cqa.setup(ctx); err != nil {
		cancel()
		return errors.Join(err, cqa.cleanup(context.Background()))
	}

	cqa.log.Info("Agent ready")
	<-ctx.Done()

	timeout, err := time.ParseDuration(cqa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return cqa.cleanup(shutdown)
}

func (cqa *CostQueryAgent) setup(ctx context.Context) error {
	cqa.mutex.Lock()
	defer cqa.mutex.Unlock()

	if err := cqa.setupServices(ctx); err != nil {
		return err
	}
	if err := cqa.setupCheckpoints(ctx); err != nil {
		return err
	}

	cqa.setupMetrics()
	return nil
}

func (cqa *CostQueryAgent) cleanup(ctx context.Context) error {
	errs := []error{}

	if cqa.metrics != nil {
		if err := cqa.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metrics server: %w", err))
		}
	}
	if cqa.listener != nil {
		if err := cqa.listener.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close checkpoint listener: %w", err))
		}
	}

	if err := cqa.sc.Cleanup(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete service container cleanup: %w", err))
	}

	cqa.wait.Wait()

	if cqa.store != nil {
		if err := cqa.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Engine returns the query engine once Serve has set it up
func (cqa *CostQueryAgent) Engine() *costquery.Engine {
	cqa.mutex.RLock()
	defer cqa.mutex.RUnlock()

	return cqa.engine
}
