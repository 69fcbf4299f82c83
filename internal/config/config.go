// Package config loads bench workload descriptions from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid workload config")

// Policies lists the engine names the bench understands.
var Policies = []string{"lru", "lruk", "lfu", "arc", "sharded-lru", "sharded-lfu"}

// Duration decodes TOML strings such as "10s" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Workload describes one bench run.
type Workload struct {
	Policy   string `toml:"policy"`
	Capacity int    `toml:"capacity"`

	// Engine knobs; zero means the engine default.
	Shards     int `toml:"shards"`
	K          int `toml:"k"`
	History    int `toml:"history"`
	Threshold  int `toml:"threshold"`
	MaxAverage int `toml:"max_average"`

	Workers  int      `toml:"workers"`
	Duration Duration `toml:"duration"`
	Reads    int      `toml:"reads"` // percentage of Gets, 0..100
	Keys     int      `toml:"keys"`
	ZipfS    float64  `toml:"zipf_s"`
	ZipfV    float64  `toml:"zipf_v"`
	Seed     int64    `toml:"seed"`
	Preload  int      `toml:"preload"`

	// Rate caps total operations per second; 0 is unlimited.
	Rate float64 `toml:"rate"`
	// ScanEvery injects a burst of ScanLength unique keys after every
	// ScanEvery operations of a worker; 0 disables scans.
	ScanEvery  int `toml:"scan_every"`
	ScanLength int `toml:"scan_length"`
}

// Default returns the workload used when neither a file nor flags say otherwise.
func Default() Workload {
	return Workload{
		Policy:     "lru",
		Capacity:   100_000,
		Workers:    8,
		Duration:   Duration{10 * time.Second},
		Reads:      80,
		Keys:       1_000_000,
		ZipfS:      1.1,
		ZipfV:      1.0,
		ScanLength: 1_000,
	}
}

// Load reads the TOML file at path on top of Default and validates the result.
func Load(path string) (Workload, error) {
	w := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read workload %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), &w)
	if err != nil {
		return w, fmt.Errorf("decode workload %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return w, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	w.Policy = strings.ToLower(strings.TrimSpace(w.Policy))
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// Validate reports the first invalid field.
func (w Workload) Validate() error {
	switch {
	case !slices.Contains(Policies, w.Policy):
		return fmt.Errorf("%w: policy %q (want one of %s)", ErrInvalidConfig, w.Policy, strings.Join(Policies, ", "))
	case w.Capacity < 0:
		return fmt.Errorf("%w: capacity %d is negative", ErrInvalidConfig, w.Capacity)
	case w.Reads < 0 || w.Reads > 100:
		return fmt.Errorf("%w: reads %d outside [0,100]", ErrInvalidConfig, w.Reads)
	case w.Keys < 1:
		return fmt.Errorf("%w: keys must be positive", ErrInvalidConfig)
	case w.ZipfS <= 1:
		return fmt.Errorf("%w: zipf_s %.3f must be > 1", ErrInvalidConfig, w.ZipfS)
	case w.ZipfV < 1:
		return fmt.Errorf("%w: zipf_v %.3f must be >= 1", ErrInvalidConfig, w.ZipfV)
	case w.Duration.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	case w.Rate < 0:
		return fmt.Errorf("%w: rate is negative", ErrInvalidConfig)
	case w.ScanEvery < 0 || w.ScanLength < 0:
		return fmt.Errorf("%w: scan settings are negative", ErrInvalidConfig)
	}
	return nil
}
