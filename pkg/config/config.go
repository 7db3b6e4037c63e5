// Package config loads analyzer configuration from YAML or JSON files and
// applies it to the default collaborators: dialect selection, per-rule
// enable/disable and severity overrides, lexicon replacement, and the knobs
// of the batch runner and HTTP server.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sqlinsight/sqlinsight/pkg/graph"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// RuleSetting adjusts one rule by ID. An empty Severity keeps the rule's
// built-in severity.
type RuleSetting struct {
	ID       string `yaml:"id" json:"id"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// Batch configures the parallel document runner.
type Batch struct {
	Concurrency int      `yaml:"concurrency" json:"concurrency"`
	Timeout     Duration `yaml:"timeout" json:"timeout"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Config is the full file-loadable configuration.
type Config struct {
	Dialect types.Dialect  `yaml:"dialect" json:"dialect"`
	Rules   []RuleSetting  `yaml:"rules,omitempty" json:"rules,omitempty"`
	Lexicon *graph.Lexicon `yaml:"lexicon,omitempty" json:"lexicon,omitempty"`
	Batch   Batch          `yaml:"batch" json:"batch"`
	Server  Server         `yaml:"server" json:"server"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Dialect: types.DialectGeneric,
		Batch: Batch{
			Concurrency: 4,
			Timeout:     Duration(30 * time.Second),
		},
		Server: Server{Addr: ":8080"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file. YAML is tried
// first; on failure the data is re-parsed as JSON. Fields absent from the
// file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("loading config", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", filename)
	}

	cfg := DefaultConfig()
	if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
		slog.Debug("YAML parse failed, trying JSON", "error", yamlErr)
		cfg = DefaultConfig()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, errors.Wrapf(yamlErr, "parse config %s", filename)
		}
	}

	slog.Debug("loaded config", "dialect", cfg.Dialect, "rule_settings", len(cfg.Rules))
	return cfg, nil
}

// ApplyRules returns a copy of the registry with the rule settings applied:
// disabled rules are dropped and severity overrides replace the built-in
// severity. Settings that name an unknown rule ID are logged and ignored.
func (c *Config) ApplyRules(reg *rules.Registry) *rules.Registry {
	settings := make(map[string]RuleSetting, len(c.Rules))
	for _, rs := range c.Rules {
		settings[rs.ID] = rs
	}

	out := rules.NewRegistry()
	known := make(map[string]bool)
	for _, rule := range reg.Rules() {
		known[rule.ID] = true
		rs, ok := settings[rule.ID]
		if !ok {
			out.Add(rule)
			continue
		}
		if rs.Disabled {
			continue
		}
		if rs.Severity != "" {
			rule.Severity = types.ParseSeverity(rs.Severity)
		}
		out.Add(rule)
	}

	for _, rs := range c.Rules {
		if !known[rs.ID] {
			slog.Warn("config names an unknown rule", "id", rs.ID)
		}
	}
	return out
}

// ActiveLexicon returns the configured lexicon, or the default one when the
// file did not set one.
func (c *Config) ActiveLexicon() graph.Lexicon {
	if c.Lexicon != nil {
		return *c.Lexicon
	}
	return graph.DefaultLexicon()
}

// Duration wraps time.Duration so config files can write "30s" or "2m".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// MarshalJSON implements json.Marshaler for Duration
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
