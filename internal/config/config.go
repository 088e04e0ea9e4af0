package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kent-id/dynamosql"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration
type Config struct {
	Region         string      `mapstructure:"region"`
	Endpoint       string      `mapstructure:"endpoint"`
	Profile        string      `mapstructure:"profile"`
	LogLevel       string      `mapstructure:"log_level"`
	ConsistentRead bool        `mapstructure:"consistent_read"`
	Retry          RetryConfig `mapstructure:"retry"`
}

// RetryConfig overrides the engine retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// New returns a viper instance with the config search paths, env binding and defaults set.
func New() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(".dynamosql")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "dynamosql"))

	// DYNAMOSQL_RETRY_MAX_ATTEMPTS -> retry.max_attempts
	v.SetEnvPrefix("DYNAMOSQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := dynamosql.DefaultRetryPolicy()
	v.SetDefault("region", "us-east-1")
	v.SetDefault("endpoint", "")
	v.SetDefault("profile", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("consistent_read", false)
	v.SetDefault("retry.max_attempts", defaults.MaxAttempts)
	v.SetDefault("retry.base_delay", defaults.BaseDelay)
	v.SetDefault("retry.multiplier", defaults.Multiplier)
	v.SetDefault("retry.max_delay", defaults.MaxDelay)
	return v, nil
}

// LoadConfig loads configuration from .env files, the config file and the environment.
// A missing config file is not an error.
func LoadConfig(v *viper.Viper) (*Config, error) {
	loadDotEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env, then .env.local with higher priority.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			dynamosql.LogWarnf("failed to load .env: %v", err)
		}
	}
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			dynamosql.LogWarnf("failed to load .env.local: %v", err)
		}
	}
}

// RetryPolicy returns the engine retry policy with configured overrides applied.
func (c *Config) RetryPolicy() dynamosql.RetryPolicy {
	policy := dynamosql.DefaultRetryPolicy()
	if c.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.BaseDelay > 0 {
		policy.BaseDelay = c.Retry.BaseDelay
	}
	if c.Retry.Multiplier > 0 {
		policy.Multiplier = c.Retry.Multiplier
	}
	if c.Retry.MaxDelay > 0 {
		policy.MaxDelay = c.Retry.MaxDelay
	}
	return policy
}

// ConnectionOptions returns the connection options derived from c.
func (c *Config) ConnectionOptions() []func(*dynamosql.Options) {
	opts := []func(*dynamosql.Options){dynamosql.WithRetryPolicy(c.RetryPolicy())}
	if c.ConsistentRead {
		opts = append(opts, dynamosql.WithConsistentRead(true))
	}
	return opts
}
