package config

import (
	"time"

	redisclient "github.com/vietddude/linkpay/internal/infra/redis"
	"github.com/vietddude/linkpay/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Auth     AuthConfig         `yaml:"auth"`
	Sync     SyncConfig         `yaml:"sync"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // HS256 secret shared with the auth provider
	Audience  string `yaml:"audience"`   // optional, e.g. "authenticated"
}

// SyncConfig holds client-side reorder sync settings.
type SyncConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	PersistTimeout time.Duration `yaml:"persist_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
