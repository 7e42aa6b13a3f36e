//go:build integration

package redisq

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupQueue(t *testing.T, ctx context.Context) *Queue {
	t.Helper()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())

	queue := NewQueueWithClient(client, "test-worker")
	t.Cleanup(func() { _ = queue.Close() })
	return queue
}

func TestIntegrationQueueRoundtrip(t *testing.T) {
	ctx := context.Background()
	queue := setupQueue(t, ctx)

	require.NoError(t, queue.Enqueue(ctx, "evt-1"))
	require.NoError(t, queue.Enqueue(ctx, "evt-2"))

	depth, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	messages, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "evt-1", messages[0].EventID)
	assert.Equal(t, "evt-2", messages[1].EventID)

	for _, msg := range messages {
		require.NoError(t, queue.Ack(ctx, msg.ID))
	}
}

func TestIntegrationQueueConsumeEmpty(t *testing.T) {
	ctx := context.Background()
	queue := setupQueue(t, ctx)

	start := time.Now()
	messages, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
	// The blocking read returns once the block window elapses
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}
