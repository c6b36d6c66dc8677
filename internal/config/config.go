// Package config loads optional simulator overrides from a YAML file,
// layered over the command line's flag defaults and under flags that are
// set explicitly.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// SimConfig holds every value a run can override via file instead of flag.
// Zero values mean "not set, defer to the flag/built-in default".
type SimConfig struct {
	Policy string        `mapstructure:"policy"`
	Seed1  uint64        `mapstructure:"seed1"`
	Seed2  uint64        `mapstructure:"seed2"`
	Tick   time.Duration `mapstructure:"tick"`
	Frames int           `mapstructure:"frames"`
	// Profile, when set, is a file path to write a pprof CPU profile to.
	Profile string `mapstructure:"profile"`
}

// Load reads and decodes the YAML file at path. A missing file is not an
// error — it yields a zero-value SimConfig so the caller falls back to
// flag defaults.
func Load(path string) (SimConfig, error) {
	var cfg SimConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return cfg, fmt.Errorf("config: building decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of override onto base, returning the
// result. Flags win over file values, so callers pass file-loaded config as
// base and flag-derived values as override.
func Merge(base, override SimConfig) SimConfig {
	out := base
	if override.Policy != "" {
		out.Policy = override.Policy
	}
	if override.Seed1 != 0 {
		out.Seed1 = override.Seed1
	}
	if override.Seed2 != 0 {
		out.Seed2 = override.Seed2
	}
	if override.Tick != 0 {
		out.Tick = override.Tick
	}
	if override.Frames != 0 {
		out.Frames = override.Frames
	}
	if override.Profile != "" {
		out.Profile = override.Profile
	}
	return out
}
