//go:build integration

package progress

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/cancer-registry-edits/internal/domain"
)

func TestRedisNotifier_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	sub := subscribe(t, ctx, client, "validation_job-int")
	defer sub.Close()

	n := NewRedisNotifier(client, "validation_")
	require.NoError(t, n.Notify(ctx, domain.NewProgressEvent("job-int", "Running validations...", domain.SeverityInfo)))

	select {
	case msg := <-sub.Channel():
		assert.JSONEq(t, `{"type":"info","message":"Running validations..."}`, msg.Payload)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func subscribe(t *testing.T, ctx context.Context, client *redis.Client, channel string) *redis.PubSub {
	t.Helper()
	sub := client.Subscribe(ctx, channel)
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	return sub
}
