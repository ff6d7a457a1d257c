// Package config holds app wide settings unmarshalled from viper
// (config file, GENOMEBANK_ environment variables and command line flags).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/genomebank/internal/genome"
)

// Store drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// EnvPrefix prefixes environment overrides, e.g. GENOMEBANK_STORE_DRIVER.
const EnvPrefix = "GENOMEBANK"

// StoreConfig selects the repository backend.
type StoreConfig struct {
	// duckdb, sqlite or memory
	Driver string `mapstructure:"driver"`

	// database file; defaults to ~/.genomebank/genomebank.<driver extension>
	Path string `mapstructure:"path"`
}

// LogConfig controls diagnostic logging to stderr.
type LogConfig struct {
	// debug, info, warn or error
	Level string `mapstructure:"level"`

	// console or json
	Format string `mapstructure:"format"`
}

// OutputConfig controls result formatting.
type OutputConfig struct {
	// tab or json
	Format string `mapstructure:"format"`
}

// Config is the root-level settings struct.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`

	// concurrent chromosomes in report generation
	Workers int `mapstructure:"workers"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverDuckDB)
	v.SetDefault("store.path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("output.format", "tab")
	v.SetDefault("workers", runtime.NumCPU())
}

// BindEnv makes every setting overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config, fills in derived defaults and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}

	if c.Store.Path == "" && c.Store.Driver != DriverMemory {
		path, err := DefaultStorePath(c.Store.Driver)
		if err != nil {
			return c, err
		}
		c.Store.Path = path
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c, c.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverDuckDB, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: store.driver %q (want duckdb, sqlite or memory)", genome.ErrInvalidInput, c.Store.Driver)
	}
	switch c.Output.Format {
	case "tab", "json":
	default:
		return fmt.Errorf("%w: output.format %q (want tab or json)", genome.ErrInvalidInput, c.Output.Format)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want console or json)", genome.ErrInvalidInput, c.Log.Format)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", genome.ErrInvalidInput, c.Log.Level)
	}
	return nil
}

// DefaultStorePath returns ~/.genomebank/genomebank.duckdb or .db for sqlite.
func DefaultStorePath(driver string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	ext := ".duckdb"
	if driver == DriverSQLite {
		ext = ".db"
	}
	return filepath.Join(home, ".genomebank", "genomebank"+ext), nil
}

// NewLogger builds a stderr logger from the log settings.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level %q", genome.ErrInvalidInput, l.Level)
	}

	zc := zap.NewDevelopmentConfig()
	if l.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}
