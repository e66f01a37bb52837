package probe

import "time"

// Config contains the settings used to invoke ffprobe. The
// timeout applies to each individual invocation of the binary.
type Config struct {
	FfprobeBinaryPath string `toml:"ffprobe_binary_path" env:"PROBE_FFPROBE_BINARY_PATH" env-default:"/usr/bin/ffprobe" validate:"required"`
	ThreadCount       int    `toml:"thread_count" env:"PROBE_THREAD_COUNT" env-default:"4" validate:"gte=0"`
	TimeoutSeconds    int    `toml:"timeout_seconds" env:"PROBE_TIMEOUT_SECONDS" env-default:"60" validate:"gt=0"`
}

func (config *Config) Timeout() time.Duration {
	return time.Duration(config.TimeoutSeconds) * time.Second
}
