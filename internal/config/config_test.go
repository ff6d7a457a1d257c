package config

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/genomebank/internal/genome"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, DriverDuckDB, c.Store.Driver)
	assert.Equal(t, "genomebank.duckdb", filepath.Base(c.Store.Path))
	assert.Equal(t, ".genomebank", filepath.Base(filepath.Dir(c.Store.Path)))
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "tab", c.Output.Format)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set("store.driver", "sqlite")
	v.Set("store.path", "/tmp/x.db")
	v.Set("output.format", "json")
	v.Set("workers", 3)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, StoreConfig{Driver: DriverSQLite, Path: "/tmp/x.db"}, c.Store)
	assert.Equal(t, "json", c.Output.Format)
	assert.Equal(t, 3, c.Workers)
}

func TestLoad_SQLiteDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := newViper()
	v.Set("store.driver", "sqlite")

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "genomebank.db", filepath.Base(c.Store.Path))
}

func TestLoad_MemoryHasNoPath(t *testing.T) {
	v := newViper()
	v.Set("store.driver", "memory")

	c, err := Load(v)
	require.NoError(t, err)
	assert.Empty(t, c.Store.Path)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("GENOMEBANK_STORE_DRIVER", "memory")
	t.Setenv("GENOMEBANK_LOG_LEVEL", "debug")

	v := newViper()
	BindEnv(v)
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, c.Store.Driver)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"store.driver", "postgres"},
		{"output.format", "xml"},
		{"log.format", "logfmt"},
		{"log.level", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newViper()
			v.Set("store.driver", "memory")
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, genome.ErrInvalidInput)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := LogConfig{Level: "info", Format: format}.NewLogger()
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel), "debug disabled at info")
	}

	_, err := LogConfig{Level: "nope"}.NewLogger()
	assert.ErrorIs(t, err, genome.ErrInvalidInput)
}
