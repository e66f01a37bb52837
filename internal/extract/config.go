package extract

import "time"

// Config contains the options which control how media attribute
// extraction jobs are scheduled, retried and bounded.
type Config struct {
	// The number of attempts a job is allowed before a transient
	// trouble is considered terminal.
	MaxAttempts int `toml:"max_attempts" env:"EXTRACT_MAX_ATTEMPTS" env-default:"3" validate:"min=1"`

	// Wall-clock ceiling of a single attempt, covering the probing and
	// persisting of the attributes.
	JobTimeoutSeconds int `toml:"job_timeout_seconds" env:"EXTRACT_JOB_TIMEOUT_SECONDS" env-default:"300" validate:"min=1"`

	// Delay between a transient failure and the next attempt.
	RetryBackoffSeconds int `toml:"retry_backoff_seconds" env:"EXTRACT_RETRY_BACKOFF_SECONDS" env-default:"5" validate:"min=0"`

	// Controls the number of workers that can perform extractions. Each
	// worker runs at most one ffprobe process at a time.
	Parallelism int `toml:"parallelism" env:"EXTRACT_PARALLELISM" env-default:"2" validate:"min=1"`

	// Workers are woken on this interval to pick up work which was pushed
	// to a shared queue by another process.
	PollIntervalSeconds int `toml:"poll_interval_seconds" env:"EXTRACT_POLL_INTERVAL_SECONDS" env-default:"10" validate:"min=1"`
}

func (config Config) JobTimeout() time.Duration {
	return time.Duration(config.JobTimeoutSeconds) * time.Second
}

func (config Config) RetryBackoff() time.Duration {
	return time.Duration(config.RetryBackoffSeconds) * time.Second
}

func (config Config) PollInterval() time.Duration {
	return time.Duration(config.PollIntervalSeconds) * time.Second
}
