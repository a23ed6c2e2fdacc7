// Package config loads rdf2csv settings from defaults, an optional TOML
// file and RDF2CSV_* environment variables, in increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/mapping"
)

// FileName is the project config file looked up in the working directory.
const FileName = "rdf2csv.toml"

// EnvPrefix prefixes environment overrides, e.g. RDF2CSV_OUTPUT_PATH.
const EnvPrefix = "RDF2CSV"

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the full set of settings for a conversion.
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
	Mapping MappingConfig `mapstructure:"mapping"`
	Script  ScriptConfig  `mapstructure:"script"`
	Log     LogConfig     `mapstructure:"log"`
}

// OutputConfig controls the written table.
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`
}

// StoreConfig selects the graph store.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	BatchSize int    `mapstructure:"batch_size"`
	PageSize  int    `mapstructure:"page_size"`
}

// MappingConfig controls how the mapping vocabulary is read. Namespaces
// holds "rml", "r2rml" or full namespace IRIs.
type MappingConfig struct {
	Namespaces []string `mapstructure:"namespaces"`
}

// ScriptConfig names an optional post-processing script.
type ScriptConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults configures default values for all options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.path", "output.csv")
	v.SetDefault("output.delimiter", ",")

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.path", ":memory:")
	v.SetDefault("store.batch_size", 500)
	v.SetDefault("store.page_size", 1000)

	v.SetDefault("mapping.namespaces", []string{"rml"})

	v.SetDefault("script.path", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// NewViper returns a Viper with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration. An explicit path must exist. With no path,
// FileName in the working directory is used when present.
func Load(path string) (*Config, error) {
	v := NewViper()
	v.SetConfigType("toml")
	switch {
	case path != "":
		if _, err := os.Stat(path); err != nil {
			return nil, errors.MissingFilef("config", path)
		}
		v.SetConfigFile(path)
	default:
		if _, err := os.Stat(FileName); err != nil {
			return LoadWithViper(v)
		}
		v.SetConfigFile(FileName)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", v.ConfigFileUsed())
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	if c.Output.Path == "" {
		return errors.New("output.path cannot be empty")
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return errors.Newf("store.backend must be %q or %q, got %q", BackendSQLite, BackendMemory, c.Store.Backend)
	}
	if c.Store.Backend == BackendSQLite && c.Store.Path == "" {
		return errors.New("store.path cannot be empty for the sqlite backend")
	}
	if c.Store.BatchSize <= 0 {
		return errors.Newf("store.batch_size must be positive, got %d", c.Store.BatchSize)
	}
	if c.Store.PageSize <= 0 {
		return errors.Newf("store.page_size must be positive, got %d", c.Store.PageSize)
	}
	if len(c.Mapping.Namespaces) == 0 {
		return errors.New("mapping.namespaces cannot be empty")
	}
	return nil
}

// NamespaceIRIs resolves the configured mapping namespaces to IRIs.
func (c *Config) NamespaceIRIs() []string {
	out := make([]string, 0, len(c.Mapping.Namespaces))
	for _, ns := range c.Mapping.Namespaces {
		switch strings.ToLower(strings.TrimSpace(ns)) {
		case "rml":
			out = append(out, mapping.RMLNamespace)
		case "r2rml", "rr":
			out = append(out, mapping.R2RMLNamespace)
		default:
			out = append(out, ns)
		}
	}
	return out
}
