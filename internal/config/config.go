// Package config loads process configuration.
//
// Precedence, lowest to highest:
//
//  1. built-in defaults (Default)
//  2. an optional TOML file (CONFIG_FILE or the -config flag)
//  3. environment variables, including any loaded from a .env file
//
// Values are read once at startup and passed explicitly to the components
// that need them (password cost, token secret, database DSN). Nothing in
// the application reads os.Getenv after Load returns.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/bcrypt"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Database drivers understood by the repository layer.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultMealDBBaseURL is TheMealDB v1 API with the public test key.
const DefaultMealDBBaseURL = "https://www.themealdb.com/api/json/v1/1"

const devSecret = "secret-dev-change-me"

// Config is the full process configuration.
type Config struct {
	Env      string `toml:"env"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`

	// SecretKey signs bearer tokens.
	SecretKey string `toml:"secret_key"`
	// BcryptCost is the password hashing work factor.
	BcryptCost int `toml:"bcrypt_cost"`
	// TokenTTL bounds token lifetime. Zero issues tokens without an expiry.
	TokenTTL Duration `toml:"token_ttl"`

	Database DatabaseConfig `toml:"database"`
	MealDB   MealDBConfig   `toml:"mealdb"`

	// RateLimit is the global request budget per second. Zero disables it.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	// CORSAllowedOrigins lists the origins browsers may call the API from.
	// "*" allows any origin.
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	// URL is a DSN: a file path or ":memory:" for sqlite, a postgres:// URL
	// for postgres.
	URL string `toml:"url"`
}

type MealDBConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// Duration lets TOML files say timeout = "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration for the given environment before any
// file or environment overrides.
func Default(env string) Config {
	cfg := Config{
		Env:        env,
		Port:       5000,
		LogLevel:   "info",
		SecretKey:  devSecret,
		BcryptCost: 12,
		TokenTTL:   Duration{24 * time.Hour},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			URL:    "data/mealdb.db",
		},
		MealDB: MealDBConfig{
			BaseURL: DefaultMealDBBaseURL,
			Timeout: Duration{10 * time.Second},
		},
		RateBurst:          50,
		CORSAllowedOrigins: []string{"*"},
	}

	// Tests hash many passwords; the minimum cost keeps them fast.
	if env == EnvTest {
		cfg.BcryptCost = bcrypt.MinCost
		cfg.Database.URL = ":memory:"
		cfg.LogLevel = "error"
	}
	if env == EnvProduction {
		cfg.SecretKey = ""
	}
	return cfg
}

// Load builds the configuration. path may be empty; CONFIG_FILE is used
// when it is. A missing .env file is not an error.
func Load(path string) (Config, error) {
	// godotenv never overrides variables that are already set, so real
	// environment variables win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV")))
	}
	if env == "" {
		env = EnvDevelopment
	}
	cfg := Default(env)

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv("BCRYPT_WORK_FACTOR"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid BCRYPT_WORK_FACTOR %q: %w", v, err)
		}
		c.BcryptCost = cost
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = Duration{ttl}
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit = limit
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MEALDB_BASE_URL"); v != "" {
		c.MealDB.BaseURL = v
	}
	if v := os.Getenv("MEALDB_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid MEALDB_TIMEOUT %q: %w", v, err)
		}
		c.MealDB.Timeout = Duration{timeout}
	}

	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	switch {
	case os.Getenv("DATABASE_URL") != "" && c.Env != EnvTest:
		c.Database.URL = os.Getenv("DATABASE_URL")
		if strings.HasPrefix(c.Database.URL, "postgres://") || strings.HasPrefix(c.Database.URL, "postgresql://") {
			c.Database.Driver = DriverPostgres
		}
	case os.Getenv("DB_USER") != "":
		// Credentials without a URL mean a local PostgreSQL; the test
		// environment gets its own database.
		name := os.Getenv("DB_NAME")
		if name == "" {
			name = "mealdb"
		}
		if c.Env == EnvTest {
			name += "_test"
		}
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		u := url.URL{
			Scheme: "postgresql",
			User:   url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
			Host:   host,
			Path:   name,
		}
		c.Database.Driver = DriverPostgres
		c.Database.URL = u.String()
	}
	return nil
}

// splitList parses "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Env)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if len(c.SecretKey) < 16 {
		return errors.New("config: SECRET_KEY must be at least 16 characters")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: bcrypt cost %d outside [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.TokenTTL.Duration < 0 {
		return errors.New("config: TOKEN_TTL must not be negative")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("config: database URL is empty")
	}
	if _, err := url.ParseRequestURI(c.MealDB.BaseURL); err != nil {
		return fmt.Errorf("config: invalid MealDB base URL: %w", err)
	}
	if c.RateLimit < 0 {
		return errors.New("config: RATE_LIMIT must not be negative")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("config: CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	out := c
	if out.SecretKey != "" {
		out.SecretKey = "[redacted]"
	}
	if u, err := url.Parse(out.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			out.Database.URL = u.String()
		}
	}
	return out
}
