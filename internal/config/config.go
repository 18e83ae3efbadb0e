// Package config loads the optional hostprobe config file. Flags always win
// over file values; the file only changes defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "10s", "2m".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the defaults a user can override per installation.
type Config struct {
	// APIBase is the measurement backend base URL.
	APIBase string `yaml:"api_base"`
	// Nodes restricts checks to these node identifiers by default.
	Nodes []string `yaml:"nodes"`
	// RequestTimeout is the per-call timeout for backend requests.
	RequestTimeout Duration `yaml:"request_timeout"`
	// PollInterval is the delay before each result poll.
	PollInterval Duration `yaml:"poll_interval"`
	// PollCeiling is the cumulative poll time budget.
	PollCeiling Duration `yaml:"poll_ceiling"`
	// LiveNodes enables fetching the node catalog from the backend instead
	// of relying only on the compiled-in table.
	LiveNodes bool `yaml:"live_nodes"`
	// NodeListTTL controls how long a fetched node catalog is cached.
	NodeListTTL Duration `yaml:"node_list_ttl"`
}

// Load reads and parses a hostprobe.yaml config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.RequestTimeout < 0 || cfg.PollInterval < 0 || cfg.PollCeiling < 0 {
		return nil, fmt.Errorf("config: negative durations are not allowed")
	}

	return &cfg, nil
}
