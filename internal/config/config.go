// Package config loads the service configuration from an optional YAML file,
// the environment and tag defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Moderation ModerationConfig `yaml:"moderation"`
	Guess      GuessConfig      `yaml:"guess"`
	Log        LogConfig        `yaml:"log"`
	Owner      OwnerConfig      `yaml:"owner"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Addr is the listen address, host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"data/volcanoes.db"`
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"  env:"AUTH_JWT_SECRET"  env-required:"true"`
	JWTIssuer  string        `yaml:"jwt_issuer"  env:"AUTH_JWT_ISSUER"  env-default:"volcano-explorer"`
	TokenTTL   time.Duration `yaml:"token_ttl"   env:"AUTH_TOKEN_TTL"   env-default:"24h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}

// ModerationConfig extends the built-in word list.
type ModerationConfig struct {
	ExtraWordsRaw string `yaml:"extra_words" env:"MODERATION_EXTRA_WORDS"`
}

// ExtraWords splits the comma separated list, dropping blanks.
func (m ModerationConfig) ExtraWords() []string {
	var words []string
	for _, w := range strings.Split(m.ExtraWordsRaw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Guess bounds used when neither YAML nor ENV sets them.
const (
	DefaultGuessMinYear       = -10000
	DefaultGuessMaxYearsAhead = 1000
)

// GuessConfig bounds accepted eruption-year guesses.
// Zero is a valid value for both fields, so their defaults are preset in
// Load instead of coming from env-default tags.
type GuessConfig struct {
	MinYear       int `yaml:"min_year"        env:"GUESS_MIN_YEAR"`
	MaxYearsAhead int `yaml:"max_years_ahead" env:"GUESS_MAX_YEARS_AHEAD"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// OwnerConfig is echoed by GET /me.
type OwnerConfig struct {
	Name          string `yaml:"name"           env:"OWNER_NAME"`
	StudentNumber string `yaml:"student_number" env:"OWNER_STUDENT_NUMBER"`
}
