package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/palemoky/poetry-importer/internal/errors"
)

// Config holds all configuration for an import run
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend"`
	Import    ImportConfig    `mapstructure:"import"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// BackendConfig holds the Supabase endpoint and API key
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ImportConfig holds CSV import options
type ImportConfig struct {
	CSVPath  string `mapstructure:"csv_path"`
	Workers  int    `mapstructure:"workers"`
	Convert  string `mapstructure:"convert"` // "", "t2s" or "s2t"
	Progress bool   `mapstructure:"progress"`
}

// RateLimitConfig holds client-side request throttling. Zero RPS disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Load loads configuration from an optional YAML file and the process environment.
// The environment should already contain the .env values (see LoadEnvFile).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("import.csv_path", "古诗词.csv")
	v.SetDefault("import.workers", 1)
	v.SetDefault("import.convert", "")
	v.SetDefault("import.progress", false)
	v.SetDefault("rate_limit.requests_per_second", 0.0)
	v.SetDefault("rate_limit.burst", 1)
	v.SetDefault("log.debug", false)
}

// bindEnvVars applies environment overrides. SUPABASE_* is authoritative;
// the VITE_* names used by the frontend .env are accepted as fallbacks.
func bindEnvVars(v *viper.Viper) {
	if url := firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL"); url != "" {
		v.Set("backend.url", url)
	}
	if key := firstEnv("SUPABASE_KEY", "VITE_SUPABASE_ANON_KEY"); key != "" {
		v.Set("backend.key", key)
	}
	if timeout := os.Getenv("BACKEND_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			v.Set("backend.timeout", d)
		}
	}

	// Import
	if path := os.Getenv("IMPORT_CSV"); path != "" {
		v.Set("import.csv_path", path)
	}
	if workers := os.Getenv("IMPORT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			v.Set("import.workers", w)
		}
	}
	if convert := os.Getenv("IMPORT_CONVERT"); convert != "" {
		v.Set("import.convert", convert)
	}
	if progress := os.Getenv("IMPORT_PROGRESS"); progress != "" {
		v.Set("import.progress", progress == "true")
	}

	// Rate Limit
	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			v.Set("rate_limit.requests_per_second", r)
		}
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			v.Set("rate_limit.burst", b)
		}
	}

	if debug := os.Getenv("LOG_DEBUG"); debug != "" {
		v.Set("log.debug", debug == "true")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// Validate validates the configuration.
// Missing backend credentials are reported as MISSING_CONFIG errors.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return apperrors.MissingConfig("SUPABASE_URL")
	}

	if c.Backend.Key == "" {
		return apperrors.MissingConfig("SUPABASE_KEY")
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid configuration: backend timeout must be positive")
	}

	if c.Import.Workers < 1 {
		return fmt.Errorf("invalid configuration: workers must be at least 1, got %d", c.Import.Workers)
	}

	switch c.Import.Convert {
	case "", "t2s", "s2t":
	default:
		return fmt.Errorf("invalid configuration: convert mode %q (must be '', 't2s' or 's2t')", c.Import.Convert)
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid configuration: rate limit requests_per_second must not be negative")
	}

	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("invalid configuration: rate limit burst must be positive")
	}

	return nil
}
