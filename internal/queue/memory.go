package queue

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type memoryQueue struct {
	*sync.Mutex
	items       []uuid.UUID
	pending     mapset.Set
	leases      map[uuid.UUID]time.Time
	lease       time.Duration
	deadLetters map[uuid.UUID]DeadLetter
}

// NewMemoryQueue creates a queue private to this process. Its contents,
// including un-acknowledged leases, do not survive a restart.
func NewMemoryQueue(lease time.Duration) *memoryQueue {
	return &memoryQueue{
		Mutex:       &sync.Mutex{},
		items:       make([]uuid.UUID, 0),
		pending:     mapset.NewThreadUnsafeSet(),
		leases:      make(map[uuid.UUID]time.Time),
		lease:       lease,
		deadLetters: make(map[uuid.UUID]DeadLetter),
	}
}

func (queue *memoryQueue) Push(_ context.Context, mediaID uuid.UUID) (bool, error) {
	queue.Lock()
	defer queue.Unlock()

	if !queue.pending.Add(mediaID) {
		return false, nil
	}

	queue.items = append(queue.items, mediaID)
	return true, nil
}

func (queue *memoryQueue) Pop(_ context.Context) (uuid.UUID, bool, error) {
	queue.Lock()
	defer queue.Unlock()

	if len(queue.items) == 0 {
		return uuid.Nil, false, nil
	}

	mediaID := queue.items[0]
	queue.items = queue.items[1:]
	queue.pending.Remove(mediaID)
	queue.leases[mediaID] = time.Now().Add(queue.lease)

	return mediaID, true, nil
}

func (queue *memoryQueue) Ack(_ context.Context, mediaID uuid.UUID) error {
	queue.Lock()
	defer queue.Unlock()

	delete(queue.leases, mediaID)
	return nil
}

func (queue *memoryQueue) Reclaim(_ context.Context) (int, error) {
	queue.Lock()
	defer queue.Unlock()

	now := time.Now()
	reclaimed := make([]uuid.UUID, 0)
	for mediaID, expiry := range queue.leases {
		if expiry.After(now) {
			continue
		}

		delete(queue.leases, mediaID)
		if queue.pending.Add(mediaID) {
			reclaimed = append(reclaimed, mediaID)
		}
	}

	queue.items = append(reclaimed, queue.items...)
	return len(reclaimed), nil
}

func (queue *memoryQueue) Len(_ context.Context) (int64, error) {
	queue.Lock()
	defer queue.Unlock()

	return int64(len(queue.items)), nil
}

func (queue *memoryQueue) PushDeadLetter(_ context.Context, letter DeadLetter) error {
	queue.Lock()
	defer queue.Unlock()

	queue.deadLetters[letter.MediaID] = letter
	return nil
}

func (queue *memoryQueue) DeadLetters(_ context.Context) ([]DeadLetter, error) {
	queue.Lock()
	defer queue.Unlock()

	letters := lo.Values(queue.deadLetters)
	sortDeadLetters(letters)
	return letters, nil
}

func (queue *memoryQueue) RemoveDeadLetter(_ context.Context, mediaID uuid.UUID) (bool, error) {
	queue.Lock()
	defer queue.Unlock()

	if _, ok := queue.deadLetters[mediaID]; !ok {
		return false, nil
	}

	delete(queue.deadLetters, mediaID)
	return true, nil
}

func (queue *memoryQueue) Close() error { return nil }
