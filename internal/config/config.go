// Package config provides typed configuration for treedrop.
//
// Configuration is assembled in layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML config file, if present
//  3. TREEDROP_* environment variables
//
// Geometry values are integers in widget units; the terminal view maps one
// cell to view.unitsPerCell units. Durations are strings such as "100ms".
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/treedrop/internal/config/loader"
	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/dnd/autoscroll"
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TREEDROP_"

// DefaultFileName is the config file looked up by DefaultPath.
const DefaultFileName = "treedrop.toml"

// Config is the complete treedrop configuration.
type Config struct {
	Drag       DragConfig       `toml:"drag"`
	Autoscroll AutoscrollConfig `toml:"autoscroll"`
	Adorner    AdornerConfig    `toml:"adorner"`
	View       ViewConfig       `toml:"view"`
	Logging    LoggingConfig    `toml:"logging"`
	Host       HostConfig       `toml:"host"`
}

// DragConfig configures drag initiation and target resolution.
type DragConfig struct {
	MinHorizontal int `toml:"minHorizontal"`
	MinVertical   int `toml:"minVertical"`
	InsertMargin  int `toml:"insertMargin"`
}

// AutoscrollConfig configures edge scrolling.
type AutoscrollConfig struct {
	Border   int      `toml:"border"`
	Step     int      `toml:"step"`
	Interval Duration `toml:"interval"`
}

// AdornerConfig configures the insertion marker.
type AdornerConfig struct {
	Thickness int `toml:"thickness"`
}

// ViewConfig configures the terminal tree view.
type ViewConfig struct {
	UnitsPerCell int  `toml:"unitsPerCell"`
	RowHeight    int  `toml:"rowHeight"` // cells
	Indent       int  `toml:"indent"`    // cells per depth level
	ShowStatus   bool `toml:"showStatus"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty discards logs
	JSON  bool   `toml:"json"`
}

// HostConfig configures the sample host.
type HostConfig struct {
	Mode   string `toml:"mode"`   // "move" or "copy"
	Tree   string `toml:"tree"`   // YAML tree file; empty uses the built-in sample
	Policy string `toml:"policy"` // Lua policy script; empty disables it
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Drag: DragConfig{
			MinHorizontal: 4,
			MinVertical:   4,
			InsertMargin:  5,
		},
		Autoscroll: AutoscrollConfig{
			Border:   10,
			Step:     12,
			Interval: Duration(100 * time.Millisecond),
		},
		Adorner: AdornerConfig{Thickness: 2},
		View: ViewConfig{
			UnitsPerCell: 4,
			RowHeight:    3,
			Indent:       2,
			ShowStatus:   true,
		},
		Logging: LoggingConfig{Level: "info"},
		Host:    HostConfig{Mode: "move"},
	}
}

// Duration is a time.Duration written as a string in TOML.
type Duration time.Duration

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Options control where Load reads from.
type Options struct {
	// FS is the file system for the config file. Defaults to the OS.
	FS loader.FileSystem

	// Env overrides the environment loader. Defaults to TREEDROP_* variables.
	Env *loader.EnvLoader

	// SkipEnv disables environment overrides.
	SkipEnv bool
}

// NewEnvLoader returns the environment loader with treedrop's short aliases.
func NewEnvLoader() *loader.EnvLoader {
	env := loader.NewEnvLoader(EnvPrefix)
	env.AddMapping(EnvPrefix+"LOG_LEVEL", "logging.level")
	env.AddMapping(EnvPrefix+"LOG_FILE", "logging.file")
	env.AddMapping(EnvPrefix+"MODE", "host.mode")
	env.AddMapping(EnvPrefix+"TREE", "host.tree")
	env.AddMapping(EnvPrefix+"POLICY", "host.policy")
	// Read by the CLI, not a setting.
	env.AddMapping(EnvPrefix+"CONFIG", "")
	return env
}

// Load builds the configuration from defaults, the file at path (which may
// be empty or missing) and the environment, then validates it.
func Load(path string, opts Options) (Config, error) {
	if opts.FS == nil {
		opts.FS = loader.DefaultFS()
	}

	merged, err := loader.NewTOMLLoaderWithFS(opts.FS, path).Load()
	if err != nil {
		return Config{}, err
	}

	if !opts.SkipEnv {
		env := opts.Env
		if env == nil {
			env = NewEnvLoader()
		}
		overrides, err := env.Load()
		if err != nil {
			return Config{}, fmt.Errorf("reading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, overrides)
	}

	cfg := Default()
	if err := decode(path, merged, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode applies a raw map onto cfg through a TOML round trip so the
// struct tags and Duration decoding are shared with the file format.
func decode(source string, raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		if source == "" {
			source = "<environment>"
		}
		return loader.NewParseError(source, err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/treedrop/treedrop.toml, falling back
// to the user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return DefaultFileName
		}
		dir = d
	}
	return filepath.Join(dir, "treedrop", DefaultFileName)
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Dnd converts the configuration into controller settings.
func (c Config) Dnd() dnd.Config {
	return dnd.Config{
		Threshold: pointer.Threshold{
			Horizontal: float64(c.Drag.MinHorizontal),
			Vertical:   float64(c.Drag.MinVertical),
		},
		InsertMargin:     float64(c.Drag.InsertMargin),
		AdornerThickness: float64(c.Adorner.Thickness),
		Autoscroll: autoscroll.Config{
			Border:   float64(c.Autoscroll.Border),
			Step:     float64(c.Autoscroll.Step),
			Interval: c.Autoscroll.Interval.Std(),
		},
	}
}

// LoggerConfig converts the logging section for output w.
func (c Config) LoggerConfig(w io.Writer) logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLogLevel(c.Logging.Level)
	cfg.JSON = c.Logging.JSON
	cfg.Output = w
	return cfg
}
