package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config holds the agent settings. Zero values keep the defaults described
// on each field.
type Config struct {
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Verifier VerifierConfig `yaml:"verifier" json:"verifier"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Output   string         `yaml:"output" json:"output" validate:"oneof=human json yaml"`
}

type CacheConfig struct {
	// Capacity bounds the result cache. 0 keeps every result for the life
	// of the process.
	Capacity int `yaml:"capacity" json:"capacity" validate:"gte=0"`
}

type VerifierConfig struct {
	// Seed makes simulated test outcomes reproducible. 0 is nondeterministic.
	Seed    int64         `yaml:"seed" json:"seed"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Verifier: VerifierConfig{Timeout: 5 * time.Second},
		Log:      LogConfig{Level: "info", Format: "text"},
		Output:   "human",
	}
}

// Load reads a YAML file over the defaults and then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CODERABBIT_* variables looked up via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("CODERABBIT_CACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CODERABBIT_CACHE_CAPACITY: %w", err)
		}
		c.Cache.Capacity = n
	}
	if v := getenv("CODERABBIT_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CODERABBIT_SEED: %w", err)
		}
		c.Verifier.Seed = n
	}
	if v := getenv("CODERABBIT_VERIFY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CODERABBIT_VERIFY_TIMEOUT: %w", err)
		}
		c.Verifier.Timeout = d
	}
	if v := getenv("CODERABBIT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("CODERABBIT_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := getenv("CODERABBIT_OUTPUT"); v != "" {
		c.Output = strings.ToLower(v)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewLogger builds a slog logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *Config) level() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
