package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/b97tsk/pxasync/pxros"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.Inbox.Enabled)
	require.Len(t, cfg.Tickers, 2)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "scenario.toml", `
[kernel]
tick = "2ms"

[inbox]
enabled = false

[[ticker]]
name = "pressure"
event = 5
period = "10ms"
samples = 3
reduce = "sum"
seed = 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Millisecond, cfg.Kernel.Tick.Duration)
	require.Equal(t, 16, cfg.Kernel.MessageLimit)
	require.False(t, cfg.Inbox.Enabled)
	require.Len(t, cfg.Tickers, 1)
	require.Equal(t, "pressure", cfg.Tickers[0].Name)
	require.Equal(t, 10*time.Millisecond, cfg.Tickers[0].Period.Duration)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "scenario.yaml", `
inbox:
  readings: 9
  interval: 5ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Inbox.Readings)
	require.Equal(t, 5*time.Millisecond, cfg.Inbox.Interval.Duration)
	require.Equal(t, Default().Tickers, cfg.Tickers)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"UnknownTOMLKey", "a.toml", "colour = 1\n"},
		{"UnknownYAMLKey", "a.yaml", "colour: 1\n"},
		{"BadDuration", "a.toml", "[kernel]\ntick = \"soon\"\n"},
		{"Extension", "a.json", "{}"},
		{"Invalid", "a.toml", "[[ticker]]\nname = \"x\"\nevent = 40\nperiod = \"1s\"\nsamples = 1\nreduce = \"sum\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"ZeroTick", func(c *Config) { c.Kernel.Tick.Duration = 0 }},
		{"NoMessages", func(c *Config) { c.Kernel.MessageLimit = 0 }},
		{"NoReadings", func(c *Config) { c.Inbox.Readings = 0 }},
		{"SharedEvent", func(c *Config) { c.Tickers[1].Event = c.Tickers[0].Event }},
		{"StopEventReused", func(c *Config) { c.Tickers[0].Event = c.Inbox.StopEvent }},
		{"ShortPeriod", func(c *Config) { c.Tickers[0].Period.Duration = time.Microsecond }},
		{"Reduction", func(c *Config) { c.Tickers[0].Reduce = "avg" }},
		{"Nothing", func(c *Config) { c.Tickers = nil; c.Inbox.Enabled = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestEventBit(t *testing.T) {
	ev, err := EventBit(0)
	require.NoError(t, err)
	require.Equal(t, pxros.Events(1), ev)

	ev, err = EventBit(31)
	require.NoError(t, err)
	require.Equal(t, pxros.Events(1<<31), ev)

	for _, n := range []int{-1, 32, 300} {
		_, err := EventBit(n)
		require.Error(t, err, n)
	}
}
