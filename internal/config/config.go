// Package config loads and validates application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by viper.
const EnvPrefix = "TALLY"

// Config is the typed view of the viper configuration.
type Config struct {
	Auth     AuthConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string
	APIPrefix       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// AuthConfig controls token signing and the seeded administrator.
type AuthConfig struct {
	JWTSecret     string
	AdminName     string
	AdminEmail    string
	AdminPassword string
	TokenTTL      time.Duration
}

// LoggingConfig controls the global slog logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "$HOME/.local/share/tally/tally.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_name", "Administrator")
	v.SetDefault("auth.admin_email", "admin@tally.local")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv makes every key overridable through TALLY_SECTION_KEY variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the typed configuration out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			APIPrefix:       v.GetString("server.api_prefix"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			TokenTTL:      v.GetDuration("auth.token_ttl"),
			AdminName:     v.GetString("auth.admin_name"),
			AdminEmail:    v.GetString("auth.admin_email"),
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: auth.token_ttl must be positive", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// ValidateServe checks the settings only the API server needs.
func (c *Config) ValidateServe() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("%w: auth.jwt_secret must be at least 16 characters", common.ErrMissingConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr", common.ErrMissingConfig)
	}
	return nil
}

// LoadDotEnv loads .env.<TALLY_ENV> and then .env from the working directory.
// Variables already present in the environment are never overwritten.
func LoadDotEnv() error {
	files := []string{".env"}
	if env := os.Getenv(EnvPrefix + "_ENV"); env != "" {
		files = append([]string{".env." + env}, files...)
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~" || strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
