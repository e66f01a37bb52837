package internal

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Enqueue_RequiresSharedQueue(t *testing.T) {
	_, err := Enqueue(context.Background(), Config{Queue: queue.Config{Backend: queue.MemoryBackend}}, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrQueueNotShared)

	_, err = Backfill(context.Background(), Config{Queue: queue.Config{Backend: queue.MemoryBackend}}, 0)
	assert.ErrorIs(t, err, ErrQueueNotShared)
}

func Test_Enqueue_PushesToRedis(t *testing.T) {
	server := miniredis.RunT(t)
	config := Config{Queue: queue.Config{Backend: queue.RedisBackend, RedisAddr: server.Addr(), KeyPrefix: "mediaprobe"}}

	first, second := uuid.New(), uuid.New()
	added, err := Enqueue(context.Background(), config, []uuid.UUID{first, second, first})
	require.NoError(t, err)
	assert.Equal(t, 2, added, "duplicate IDs should only be queued once")

	q, err := queue.New(context.Background(), config.Queue)
	require.NoError(t, err)
	defer q.Close()

	length, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}
