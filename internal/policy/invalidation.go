package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

// Invalidator drops cached subjects. CachedResolver implements it.
type Invalidator interface {
	Invalidate(userID string)
}

// RedisInvalidator broadcasts subject invalidations over a Redis channel so
// that every server instance drops its cached entry, not only the one that
// handled the role or membership change.
type RedisInvalidator struct {
	client  *redis.Client
	channel string
	local   Invalidator
	logger  logrus.FieldLogger
}

func NewRedisInvalidator(client *redis.Client, channel string, local Invalidator, logger logrus.FieldLogger) *RedisInvalidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisInvalidator{client: client, channel: channel, local: local, logger: logger}
}

// DialRedis parses url and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Invalidate drops the local entry, then publishes userID. A failed publish
// is logged; other instances catch up when their entry expires.
func (r *RedisInvalidator) Invalidate(userID string) {
	r.local.Invalidate(userID)

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, userID).Err(); err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Warn("failed to publish subject invalidation")
	}
}

// Run applies invalidations published by any instance until ctx is done.
func (r *RedisInvalidator) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if msg.Payload != "" {
				r.local.Invalidate(msg.Payload)
			}
		}
	}
}
