package database

// DatabaseConfig is a subset of the configuration focusing solely
// on database connection items
type DatabaseConfig struct {
	User     string `toml:"username" env:"DB_USERNAME" validate:"required"`
	Password string `toml:"password" env:"DB_PASSWORD"`
	Name     string `toml:"name" env:"DB_NAME" env-default:"MEDIAPROBE_DB" validate:"required"`
	Host     string `toml:"host" env:"DB_HOST" env-default:"0.0.0.0" validate:"required"`
	Port     string `toml:"port" env:"DB_PORT" env-default:"5432" validate:"required,numeric"`
}
