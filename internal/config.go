package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/mediaprobe/internal/api"
	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/hbomb79/mediaprobe/internal/queue"
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config is the struct used to contain the
	// various user config supplied by file, or
	// by the environment.
	Config struct {
		Probe      probe.Config            `toml:"probe"`
		Extraction extract.Config          `toml:"extraction"`
		Database   database.DatabaseConfig `toml:"database"`
		Queue      queue.Config            `toml:"queue"`
		RestConfig api.RestConfig          `toml:"api"`
		Logging    LoggingConfig           `toml:"logging"`
	}

	LoggingConfig struct {
		Level      string `toml:"level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=verbose debug info warning error"`
		FilePath   string `toml:"file_path" env:"LOG_FILE_PATH"`
		MaxSizeMB  int    `toml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"50" validate:"min=1"`
		MaxBackups int    `toml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3" validate:"min=0"`
		MaxAgeDays int    `toml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"14" validate:"min=0"`
	}
)

var validate = validator.New()

// LoadConfig reads the TOML configuration file at the path provided, with any
// environment variables taking precedence. If the path is empty, or the file
// does not exist, the configuration is read from the environment alone.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, config); err != nil {
				return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
			}

			return config, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file %s could not be accessed: %w", configPath, err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return config, nil
}

// Validate checks the entire configuration, as required to run the server.
func (config *Config) Validate() error {
	return validate.Struct(config)
}

// ValidateSections checks only the sections of the config provided, for
// commands which do not need the full configuration.
func ValidateSections(sections ...any) error {
	for _, section := range sections {
		if err := validate.Struct(section); err != nil {
			return err
		}
	}

	return nil
}

// ConfigUsage describes every environment variable understood by the
// configuration, for use in the CLI help text.
func ConfigUsage() string {
	usage, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}

	return usage
}
