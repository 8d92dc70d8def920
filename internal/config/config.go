package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type (
	Config struct {
		Env      string `mapstructure:"ENV"`
		LogLevel string `mapstructure:"LOG_LEVEL"`

		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		SQLitePath string `mapstructure:"SQLITE_PATH"`

		TitleFetchTimeout time.Duration `mapstructure:"TITLE_FETCH_TIMEOUT"`

		RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
		RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
		CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`

		// Empty RedisAddr keeps rate limiting in process memory.
		RedisAddr     string `mapstructure:"REDIS_ADDR"`
		RedisPassword string `mapstructure:"REDIS_PASSWORD"`
		RedisDB       int    `mapstructure:"REDIS_DB"`

		SeedOnStart bool   `mapstructure:"SEED_ON_START"`
		SeedFile    string `mapstructure:"SEED_FILE"`
	}
)

var defaults = map[string]interface{}{
	"ENV":                 EnvDevelopment,
	"LOG_LEVEL":           "info",
	"HOST":                "0.0.0.0",
	"PORT":                "1323",
	"GRPC_PORT":           "9000",
	"DB_DRIVER":           DriverPostgres,
	"DB_HOST":             "0.0.0.0",
	"DB_PORT":             "5432",
	"DB_USER":             "user",
	"DB_PASSWORD":         "password",
	"DB_NAME":             "db",
	"DB_SSL_MODE":         sslModeDisable,
	"SQLITE_PATH":         "bookmarks.db",
	"TITLE_FETCH_TIMEOUT": "4s",
	"RATE_LIMIT_MAX":      200,
	"RATE_LIMIT_WINDOW":   "15m",
	"CORS_ORIGINS":        []string{"*"},
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"SEED_ON_START":       true,
	"SEED_FILE":           "",
}

// NewConfig reads BOOKMARKER_* environment variables on top of the defaults.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKER")

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DriverPostgres, DriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.Env, EnvDevelopment, EnvProduction) {
		return errors.New(fmt.Sprintf("env is invalid: %s", cfg.Env))
	}
	if cfg.TitleFetchTimeout <= 0 {
		return errors.New("title fetch timeout must be positive")
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
