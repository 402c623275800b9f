// Package config loads pxrun scenarios from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/b97tsk/pxasync/pxros"
)

// Reductions a ticker task can apply to its samples.
const (
	ReduceSum = "sum"
	ReduceMax = "max"
)

// Config describes one pxrun scenario.
type Config struct {
	Kernel  KernelConfig   `toml:"kernel" yaml:"kernel"`
	Inbox   InboxConfig    `toml:"inbox" yaml:"inbox"`
	Tickers []TickerConfig `toml:"ticker" yaml:"ticker"`
}

// KernelConfig configures the simulated kernel.
type KernelConfig struct {
	Tick         Duration `toml:"tick" yaml:"tick"`
	MessageLimit int      `toml:"message_limit" yaml:"message_limit"`
}

// InboxConfig configures the inbox task and the feeder task sending to it.
type InboxConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	Name      uint32   `toml:"name" yaml:"name"`
	Readings  int      `toml:"readings" yaml:"readings"`
	Interval  Duration `toml:"interval" yaml:"interval"`
	StopEvent int      `toml:"stop_event" yaml:"stop_event"`
	PaceEvent int      `toml:"pace_event" yaml:"pace_event"`
}

// TickerConfig configures one ticker task.
type TickerConfig struct {
	Name    string   `toml:"name" yaml:"name"`
	Event   int      `toml:"event" yaml:"event"`
	Period  Duration `toml:"period" yaml:"period"`
	Samples int      `toml:"samples" yaml:"samples"`
	Reduce  string   `toml:"reduce" yaml:"reduce"`
	Seed    int      `toml:"seed" yaml:"seed"`
}

// Duration is a [time.Duration] written as a string such as "250ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Default returns the built-in scenario: two ticker tasks and an inbox fed
// with five readings.
func Default() Config {
	return Config{
		Kernel: KernelConfig{
			Tick:         Duration{pxros.TickLength},
			MessageLimit: 16,
		},
		Inbox: InboxConfig{
			Enabled:   true,
			Name:      1,
			Readings:  5,
			Interval:  Duration{10 * time.Millisecond},
			StopEvent: 0,
			PaceEvent: 1,
		},
		Tickers: []TickerConfig{
			{Name: "temperature", Event: 2, Period: Duration{20 * time.Millisecond}, Samples: 4, Reduce: ReduceMax, Seed: 7},
			{Name: "flow", Event: 3, Period: Duration{15 * time.Millisecond}, Samples: 6, Reduce: ReduceSum, Seed: 3},
		},
	}
}

// Load reads a scenario from path, on top of [Default]. The format follows
// the file extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg.Tickers = nil
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) != 0 {
			return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
		}
		if !meta.IsDefined("ticker") {
			cfg.Tickers = Default().Tickers
		}
	case ".yaml", ".yml":
		cfg.Tickers = nil
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		if cfg.Tickers == nil {
			cfg.Tickers = Default().Tickers
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if c.Kernel.Tick.Duration <= 0 {
		return errors.New("kernel.tick must be positive")
	}
	if c.Kernel.MessageLimit <= 0 {
		return errors.New("kernel.message_limit must be positive")
	}

	used := pxros.NoEvents
	claim := func(what string, bit int) error {
		ev, err := EventBit(bit)
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		if used.Intersects(ev) {
			return fmt.Errorf("%s: event %d already in use", what, bit)
		}
		used = used.Union(ev)
		return nil
	}

	if c.Inbox.Enabled {
		if c.Inbox.Readings <= 0 {
			return errors.New("inbox.readings must be positive")
		}
		if c.Inbox.Interval.Duration < c.Kernel.Tick.Duration {
			return errors.New("inbox.interval must be at least one tick")
		}
		if err := claim("inbox.stop_event", c.Inbox.StopEvent); err != nil {
			return err
		}
		// The pace event belongs to the feeder task, not to the executor.
		if _, err := EventBit(c.Inbox.PaceEvent); err != nil {
			return fmt.Errorf("inbox.pace_event: %w", err)
		}
	}

	if len(c.Tickers) == 0 && !c.Inbox.Enabled {
		return errors.New("nothing to run: no tickers and inbox disabled")
	}

	for i, t := range c.Tickers {
		what := fmt.Sprintf("ticker[%d]", i)
		if t.Name == "" {
			return fmt.Errorf("%s: missing name", what)
		}
		if err := claim(what+".event", t.Event); err != nil {
			return err
		}
		if t.Period.Duration < c.Kernel.Tick.Duration {
			return fmt.Errorf("%s: period must be at least one tick", what)
		}
		if t.Samples <= 0 {
			return fmt.Errorf("%s: samples must be positive", what)
		}
		switch t.Reduce {
		case ReduceSum, ReduceMax:
		default:
			return fmt.Errorf("%s: unknown reduction %q", what, t.Reduce)
		}
	}

	return nil
}

// EventBit returns the event set holding only bit n.
func EventBit(n int) (pxros.Events, error) {
	b, err := safecast.Conv[uint8](n)
	if err != nil || b >= 32 {
		return pxros.NoEvents, fmt.Errorf("event bit %d out of range [0, 32)", n)
	}
	return pxros.Events(1) << b, nil
}
