package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

var errConfigInvalid = errors.New("invalid config")

// Config holds every benchmark knob. It can come from a JSONC file and is
// then overridden by any flag given on the command line.
type Config struct {
	Slots     int    `json:"slots"`
	Buckets   int    `json:"buckets"`
	BlockSize int    `json:"block_size"` //nolint:tagliatelle // snake_case for config file
	Policy    string `json:"policy"`

	Workers  int     `json:"workers"`
	Duration string  `json:"duration"`
	Blocks   int     `json:"blocks"`
	WritePct int     `json:"write_pct"` //nolint:tagliatelle // snake_case for config file
	PinPct   int     `json:"pin_pct"`   //nolint:tagliatelle // snake_case for config file
	ZipfS    float64 `json:"zipf_s"`    //nolint:tagliatelle // snake_case for config file
	ZipfV    float64 `json:"zipf_v"`    //nolint:tagliatelle // snake_case for config file
	Seed     int64   `json:"seed"`

	Image string  `json:"image"`
	IOPS  float64 `json:"iops"`

	MetricsAddr string `json:"metrics_addr"` //nolint:tagliatelle // snake_case for config file
	PprofAddr   string `json:"pprof_addr"`   //nolint:tagliatelle // snake_case for config file
	LogLevel    string `json:"log_level"`    //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig mirrors a small kernel buffer cache: 30 slots, 13 buckets.
func DefaultConfig() Config {
	return Config{
		Slots:     30,
		Buckets:   13,
		BlockSize: 1024,
		Policy:    "recycle",
		Workers:   2 * runtime.GOMAXPROCS(0),
		Duration:  "10s",
		Blocks:    2000,
		WritePct:  20,
		PinPct:    5,
		ZipfS:     1.1,
		ZipfV:     1.0,
		Seed:      time.Now().UnixNano(),
		LogLevel:  "info",
	}
}

// bindFlags registers one flag per field, defaulting to cfg.
func bindFlags(fs *flag.FlagSet, cfg *Config) *string {
	configPath := fs.String("config", "", "JSONC config file; flags override its values")

	fs.IntVar(&cfg.Slots, "slots", cfg.Slots, "number of cache slots")
	fs.IntVar(&cfg.Buckets, "buckets", cfg.Buckets, "number of hash buckets (0=auto)")
	fs.IntVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "block size in bytes")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "release stamp policy: recycle | lru")

	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines (< slots)")
	fs.StringVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.IntVar(&cfg.Blocks, "blocks", cfg.Blocks, "block space size")
	fs.IntVar(&cfg.WritePct, "writes", cfg.WritePct, "write percentage [0..100]")
	fs.IntVar(&cfg.PinPct, "pins", cfg.PinPct, "pin percentage [0..100]")
	fs.Float64Var(&cfg.ZipfS, "zipf-s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf-v", cfg.ZipfV, "Zipf v >= 1")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")

	fs.StringVar(&cfg.Image, "image", cfg.Image, "disk image path (empty = in-memory device)")
	fs.Float64Var(&cfg.IOPS, "iops", cfg.IOPS, "device transfer limit per second (0 = unlimited)")

	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr (empty = disabled)")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (empty = disabled)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug | info | warn | error")
	return configPath
}

// LoadConfig parses args with the precedence defaults < config file < flags.
func LoadConfig(args []string) (Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("bcbench", flag.ContinueOnError)
	path := bindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		data, err := os.ReadFile(*path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		fileCfg, err := parseConfig(data, DefaultConfig())
		if err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", errConfigInvalid, *path, err)
		}

		// Replay only the flags given explicitly on top of the file.
		over := flag.NewFlagSet("overrides", flag.ContinueOnError)
		bindFlags(over, &fileCfg)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if err := over.Set(f.Name, f.Value.String()); err != nil && setErr == nil {
				setErr = err
			}
		})
		if setErr != nil {
			return Config{}, setErr
		}
		cfg = fileCfg
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errConfigInvalid, err)
	}
	return cfg, nil
}

// parseConfig overlays JSONC data onto base.
func parseConfig(data []byte, base Config) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	cfg := base
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Slots <= 0:
		return errors.New("slots must be > 0")
	case c.BlockSize <= 0:
		return errors.New("block_size must be > 0")
	case c.Workers <= 0 || c.Workers >= c.Slots:
		// Each worker holds at most one slot and one pin.
		return fmt.Errorf("workers must be in [1, slots), got %d", c.Workers)
	case c.Blocks <= 0:
		return errors.New("blocks must be > 0")
	case c.WritePct < 0 || c.WritePct > 100 || c.PinPct < 0 || c.PinPct > 100:
		return errors.New("percentages must be in [0, 100]")
	case c.ZipfS <= 1 || c.ZipfV < 1:
		return errors.New("zipf_s must be > 1 and zipf_v >= 1")
	case c.Policy != "recycle" && c.Policy != "lru":
		return fmt.Errorf("unknown policy %q (use recycle or lru)", c.Policy)
	}
	if _, err := c.duration(); err != nil {
		return err
	}
	_, err := c.level()
	return err
}

func (c Config) duration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("duration must be > 0")
	}
	return d, nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
