package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cancer-registry-edits/internal/domain"
)

// Publisher is the subset of the Redis client used to publish events
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes events to the job's channel group on Redis pub/sub
type RedisNotifier struct {
	client Publisher
	prefix string
}

// NewRedisNotifier creates a notifier publishing to prefix+jobID
func NewRedisNotifier(client Publisher, prefix string) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix}
}

// Notify publishes the encoded event
func (n *RedisNotifier) Notify(ctx context.Context, event domain.ProgressEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	channel := Group(n.prefix, event.JobID)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
