// Package queue holds the media IDs waiting for attribute extraction, along
// with the dead letters of extractions which failed terminally.
package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type (
	// Queue is a FIFO of media IDs. Pushing an ID which is already waiting
	// is a no-op, so enqueueing is idempotent until the ID is popped.
	//
	// A popped ID is leased to the consumer until it is acknowledged with
	// Ack. If the lease expires first (the consumer died), Reclaim returns
	// the ID to the front of the queue.
	Queue interface {
		Push(ctx context.Context, mediaID uuid.UUID) (bool, error)
		Pop(ctx context.Context) (uuid.UUID, bool, error)
		Ack(ctx context.Context, mediaID uuid.UUID) error
		Reclaim(ctx context.Context) (int, error)
		Len(ctx context.Context) (int64, error)

		PushDeadLetter(ctx context.Context, letter DeadLetter) error
		DeadLetters(ctx context.Context) ([]DeadLetter, error)
		RemoveDeadLetter(ctx context.Context, mediaID uuid.UUID) (bool, error)

		Close() error
	}

	// DeadLetter records an extraction which failed terminally, and will not
	// be retried unless an operator asks for it.
	DeadLetter struct {
		MediaID  uuid.UUID `json:"media_id"`
		Trouble  string    `json:"trouble"`
		Message  string    `json:"message"`
		Attempts int       `json:"attempts"`
		FailedAt time.Time `json:"failed_at"`
	}
)

// New constructs the queue backend described by the config provided. The redis
// backend is pinged before returning.
func New(ctx context.Context, config Config) (Queue, error) {
	switch config.Backend {
	case MemoryBackend, "":
		return NewMemoryQueue(config.Lease()), nil
	case RedisBackend:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
		}

		return NewRedisQueue(client, config.KeyPrefix, config.Lease()), nil
	default:
		return nil, fmt.Errorf("queue backend '%s' not recognized", config.Backend)
	}
}

func sortDeadLetters(letters []DeadLetter) {
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].FailedAt.Before(letters[j].FailedAt)
	})
}
