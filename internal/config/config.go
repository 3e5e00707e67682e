package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/23skdu/abx/internal/distance"
)

// Prefix is the environment variable prefix, e.g. ABX_WORKERS.
const Prefix = "ABX"

// Config validation errors
var (
	ErrInvalidMetric    = errors.New("metric must be 'cosine' or 'euclidian'")
	ErrInvalidWorkers   = errors.New("workers must be positive")
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel  = errors.New("log_level must be debug, info, warn, or error")
)

// Config holds the run settings read from the environment.
type Config struct {
	Metric      string `envconfig:"METRIC" default:"cosine"`
	Symmetric   bool   `envconfig:"SYMMETRIC" default:"false"`
	Workers     int    `envconfig:"WORKERS" default:"40"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""` // empty disables the metrics server
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Metric:    distance.NameCosine,
		Workers:   40,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load reads the given dotenv files, skipping any that do not exist, and then
// the ABX_* environment. Variables already set in the environment win over
// the files.
func Load(envFiles ...string) (Config, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if _, err := distance.Parse(c.Metric); err != nil {
		return ErrInvalidMetric
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warn" && c.LogLevel != "error" {
		return ErrInvalidLogLevel
	}
	return nil
}
