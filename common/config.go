package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the explicit replacement for ambient global options (spec.md
// §9: "context passed explicitly"). It is mutated by `CALL k=v` statements
// at runtime and can be seeded from a YAML file at session start.
type Config struct {
	// Threads is the fixed worker-pool size (spec.md §4.7, §5). Zero means
	// "use runtime.NumCPU()".
	Threads int `yaml:"threads"`
	// Timeout is the per-query cooperative-cancellation deadline. Zero
	// means "no timeout".
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel controls the verbosity of the ExecutionContext logger.
	LogLevel string `yaml:"log_level"`
	// ExplainFormat is either "text" or "json" (SPEC_FULL.md §10.3/§12).
	ExplainFormat string `yaml:"explain_format"`
}

// DefaultConfig returns the zero-value-safe defaults used when no file or
// CALL statement has overridden anything yet.
func DefaultConfig() Config {
	return Config{
		Threads:       0,
		Timeout:       0,
		LogLevel:      "info",
		ExplainFormat: "text",
	}
}

// LoadConfigFile loads session defaults from a YAML file, grounded on
// Sneller's own dependency on a YAML library for config surfaces
// (SPEC_FULL.md §11).
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Set applies a single `CALL k=v` option, used by the ConfigSet logical
// operator (SPEC_FULL.md §10.3).
func (c *Config) Set(key, value string) error {
	switch key {
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("threads must be an integer: %w", err)
		}
		c.Threads = n
	case "timeout":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout must be an integer (ms): %w", err)
		}
		c.Timeout = time.Duration(ms) * time.Millisecond
	case "log_level":
		c.LogLevel = value
	case "explain_format":
		if value != "text" && value != "json" {
			return fmt.Errorf("explain_format must be text or json")
		}
		c.ExplainFormat = value
	default:
		return fmt.Errorf("unknown session option %q", key)
	}
	return nil
}
