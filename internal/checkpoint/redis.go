package checkpoint

import (
	"context"
	"fmt"
	"time"

	config "github.com/mwantia/costquery/internal/config/server"
	"github.com/mwantia/costquery/pkg/log"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the checkpoint redis and verifies connectivity
func NewRedisClient(ctx context.Context, cfg config.CheckpointRedisServerConfig) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rc, nil
}

// Publish announces a checkpoint to every agent listening on channel
func Publish(ctx context.Context, rc *redis.Client, channel, reason string) (int64, error) {
	receivers, err := rc.Publish(ctx, channel, reason).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish checkpoint: %w", err)
	}
	return receivers, nil
}

// Listener invalidates the custom field filters whenever a message arrives on a redis channel
type Listener struct {
	rc      *redis.Client
	channel string
	target  Invalidator
	log     log.LoggerService
}

func NewListener(rc *redis.Client, channel string, target Invalidator, logger log.LoggerService) *Listener {
	return &Listener{
		rc:      rc,
		channel: channel,
		target:  target,
		log:     logger,
	}
}

// Run blocks until ctx is done or the subscription fails
func (l *Listener) Run(ctx context.Context) error {
	sub := l.rc.Subscribe(ctx, l.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", l.channel, err)
	}
	l.log.Info("Listening for checkpoints on '%s'", l.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("checkpoint subscription on '%s' closed", l.channel)
			}
			trigger(ctx, l.target, l.log, "redis", msg.Payload)
		}
	}
}

func (l *Listener) Close() error {
	return l.rc.Close()
}
