// Package config reads the dynbridge.yaml file used by the command line
// tool and example programs.
//
//	log:
//	  level: debug        # debug, info, warn, error
//	  format: console     # console or json
//	location: Europe/Paris
//	samples: true
//	memory_limit_pages: 256
//	modules:
//	  - path: ./arith.wasm
//	    wit: ./arith.wit
//	    name: Arith
//	    version: 1.0.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve without a system database

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/dynbridge/errors"
)

// FileNames are searched for by Find, in order.
var FileNames = []string{"dynbridge.yaml", "dynbridge.yml"}

// Config is the top-level configuration.
type Config struct {
	// Samples registers the sample module. Defaults to true.
	Samples *bool `yaml:"samples,omitempty"`

	// Location is the IANA zone used by local-naive date-time conversions.
	// Empty means the process's local zone.
	Location string `yaml:"location,omitempty"`

	Log Log `yaml:"log"`

	// Modules are loaded at startup, in order.
	Modules []Module `yaml:"modules,omitempty"`

	// MemoryLimitPages caps the linear memory of loaded .wasm modules in
	// 64KiB pages. Zero keeps the engine default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages,omitempty"`
}

// Log configures the logger built by BuildLogger.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Module is a module file to load at startup.
type Module struct {
	// Path to the .wasm file, relative to the configuration file.
	Path string `yaml:"path"`

	// WIT is an optional signature file. A .wit file next to Path is used
	// when omitted.
	WIT string `yaml:"wit,omitempty"`

	// Name defaults to the file's base name.
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults("")
	return cfg
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "reading config "+path)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses configuration content. path is used for error messages
// and to resolve relative module paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parsing "+path)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults(filepath.Dir(path))
	return &cfg, nil
}

// Find searches dir and its parents for a configuration file. It returns ""
// and no error when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolving directory")
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if _, err := zapcore.ParseLevel(orDefault(c.Log.Level, "info")); err != nil {
		return invalid(path, "log.level: %v", err)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return invalid(path, "log.format: must be console or json, got %q", c.Log.Format)
	}
	if c.Location != "" {
		if _, err := time.LoadLocation(c.Location); err != nil {
			return invalid(path, "location: %v", err)
		}
	}

	seen := make(map[string]int)
	for i, m := range c.Modules {
		if strings.TrimSpace(m.Path) == "" {
			return invalid(path, "modules[%d]: path is required", i)
		}
		if m.Name == "" {
			continue
		}
		key := m.Name + "@" + m.Version
		if prev, ok := seen[key]; ok {
			return invalid(path, "modules[%d]: %s duplicates modules[%d]", i, m.Name, prev)
		}
		seen[key] = i
	}
	return nil
}

func (c *Config) setDefaults(dir string) {
	if c.Samples == nil {
		on := true
		c.Samples = &on
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	for i := range c.Modules {
		m := &c.Modules[i]
		m.Path = resolvePath(dir, m.Path)
		if m.WIT != "" {
			m.WIT = resolvePath(dir, m.WIT)
		}
	}
}

// SamplesEnabled reports whether the sample module should be registered.
func (c *Config) SamplesEnabled() bool {
	return c.Samples == nil || *c.Samples
}

// TimeLocation returns the configured zone, or time.Local.
func (c *Config) TimeLocation() *time.Location {
	if c.Location == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.Local
	}
	return loc
}

// BuildLogger builds a zap logger from the log section.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(orDefault(c.Log.Level, "info"))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}

	var zc zap.Config
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func resolvePath(dir, p string) string {
	if dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func invalid(path, format string, args ...any) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Value(path).
		Detail("%s: %s", path, fmt.Sprintf(format, args...)).
		Build()
}
