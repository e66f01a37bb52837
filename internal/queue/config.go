package queue

import "time"

type Backend string

const (
	MemoryBackend Backend = "memory"
	RedisBackend  Backend = "redis"
)

// Config controls where pending extractions and dead letters are kept. The
// memory backend is private to a single process; the redis backend allows
// the CLI (and other processes) to enqueue work for a running server.
type Config struct {
	Backend       Backend `toml:"backend" env:"QUEUE_BACKEND" env-default:"memory" validate:"oneof=memory redis"`
	RedisAddr     string  `toml:"redis_addr" env:"QUEUE_REDIS_ADDR" env-default:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPassword string  `toml:"redis_password" env:"QUEUE_REDIS_PASSWORD"`
	RedisDB       int     `toml:"redis_db" env:"QUEUE_REDIS_DB" env-default:"0" validate:"gte=0"`
	KeyPrefix     string  `toml:"key_prefix" env:"QUEUE_KEY_PREFIX" env-default:"mediaprobe:extraction"`

	// LeaseSeconds must comfortably exceed the longest an extraction can
	// run for (every attempt, plus backoff), or live work will be reclaimed.
	LeaseSeconds int `toml:"lease_seconds" env:"QUEUE_LEASE_SECONDS" env-default:"1800" validate:"gt=0"`
}

const DefaultLease = 30 * time.Minute

func (config *Config) Lease() time.Duration {
	if config.LeaseSeconds <= 0 {
		return DefaultLease
	}

	return time.Duration(config.LeaseSeconds) * time.Second
}
