package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var log = logger.Get("Queue")

var (
	// KEYS[1] = pending set, KEYS[2] = list, KEYS[3] = processing zset
	pushScript = redis.NewScript(`
		if redis.call('SADD', KEYS[1], ARGV[1]) == 1 then
			redis.call('RPUSH', KEYS[2], ARGV[1])
			return 1
		end
		return 0
	`)

	// ARGV[1] = lease expiry (unix millis)
	popScript = redis.NewScript(`
		local id = redis.call('LPOP', KEYS[2])
		if id then
			redis.call('SREM', KEYS[1], id)
			redis.call('ZADD', KEYS[3], ARGV[1], id)
		end
		return id
	`)

	// ARGV[1] = now (unix millis)
	reclaimScript = redis.NewScript(`
		local expired = redis.call('ZRANGEBYSCORE', KEYS[3], '-inf', ARGV[1])
		local reclaimed = 0
		for _, id in ipairs(expired) do
			redis.call('ZREM', KEYS[3], id)
			if redis.call('SADD', KEYS[1], id) == 1 then
				redis.call('LPUSH', KEYS[2], id)
				reclaimed = reclaimed + 1
			end
		end
		return reclaimed
	`)
)

// redisQueue keeps the queue in redis so that it can be shared between
// processes. The list holds the order, and a companion set holds the same
// IDs for de-duplication. Popped IDs are held in a sorted set, scored by
// the expiry of their lease, until they are acknowledged. Push, pop and
// reclaim each run as a script so the keys stay in step.
type redisQueue struct {
	client redis.UniversalClient
	prefix string
	lease  time.Duration
}

func NewRedisQueue(client redis.UniversalClient, prefix string, lease time.Duration) *redisQueue {
	return &redisQueue{client: client, prefix: prefix, lease: lease}
}

func (queue *redisQueue) key(name string) string {
	return fmt.Sprintf("%s:%s", queue.prefix, name)
}

func (queue *redisQueue) queueKeys() []string {
	return []string{queue.key("pending"), queue.key("queue"), queue.key("processing")}
}

func (queue *redisQueue) Push(ctx context.Context, mediaID uuid.UUID) (bool, error) {
	added, err := pushScript.Run(ctx, queue.client, queue.queueKeys(), mediaID.String()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to push %s to queue: %w", mediaID, err)
	}

	return added == 1, nil
}

func (queue *redisQueue) Pop(ctx context.Context) (uuid.UUID, bool, error) {
	expiry := time.Now().Add(queue.lease).UnixMilli()
	raw, err := popScript.Run(ctx, queue.client, queue.queueKeys(), expiry).Text()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	} else if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to pop from queue: %w", err)
	}

	mediaID, err := uuid.Parse(raw)
	if err != nil {
		log.Emit(logger.WARNING, "Discarding malformed queue entry '%s': %v\n", raw, err)
		queue.client.ZRem(ctx, queue.key("processing"), raw)
		return uuid.Nil, false, nil
	}

	return mediaID, true, nil
}

func (queue *redisQueue) Ack(ctx context.Context, mediaID uuid.UUID) error {
	if err := queue.client.ZRem(ctx, queue.key("processing"), mediaID.String()).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge %s: %w", mediaID, err)
	}

	return nil
}

func (queue *redisQueue) Reclaim(ctx context.Context) (int, error) {
	reclaimed, err := reclaimScript.Run(ctx, queue.client, queue.queueKeys(), time.Now().UnixMilli()).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim expired leases: %w", err)
	}

	return reclaimed, nil
}

func (queue *redisQueue) Len(ctx context.Context) (int64, error) {
	return queue.client.LLen(ctx, queue.key("queue")).Result()
}

func (queue *redisQueue) PushDeadLetter(ctx context.Context, letter DeadLetter) error {
	data, err := json.Marshal(letter)
	if err != nil {
		return err
	}

	return queue.client.HSet(ctx, queue.key("deadletter"), letter.MediaID.String(), data).Err()
}

func (queue *redisQueue) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	raw, err := queue.client.HGetAll(ctx, queue.key("deadletter")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dead letters: %w", err)
	}

	letters := make([]DeadLetter, 0, len(raw))
	for field, value := range raw {
		var letter DeadLetter
		if err := json.Unmarshal([]byte(value), &letter); err != nil {
			log.Emit(logger.WARNING, "Ignoring malformed dead letter for %s: %v\n", field, err)
			continue
		}

		letters = append(letters, letter)
	}

	sortDeadLetters(letters)
	return letters, nil
}

func (queue *redisQueue) RemoveDeadLetter(ctx context.Context, mediaID uuid.UUID) (bool, error) {
	removed, err := queue.client.HDel(ctx, queue.key("deadletter"), mediaID.String()).Result()
	if err != nil {
		return false, err
	}

	return removed > 0, nil
}

func (queue *redisQueue) Close() error {
	return queue.client.Close()
}
