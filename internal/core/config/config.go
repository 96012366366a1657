// Package config loads the startup configuration of the simulation core.
// Every value here is fixed for the lifetime of a World.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Arena     ArenaConfig     `yaml:"arena"`
	Emitter   EmitterConfig   `yaml:"emitter"`
	Execution ExecutionConfig `yaml:"execution"`
	Deferred  DeferredConfig  `yaml:"deferred"`
	Collision CollisionConfig `yaml:"collision"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type ArenaConfig struct {
	Capacity int `yaml:"capacity"` // entity slots allocated at startup
}

type EmitterConfig struct {
	RefreshInterval int `yaml:"refresh_interval"` // arena allocations between master-structure refreshes
	HoleScanLimit   int `yaml:"hole_scan_limit"`  // children inspected per frame looking for free slots
	EffectFrames    int `yaml:"effect_frames"`    // lifetime of a deletion effect
}

type ExecutionConfig struct {
	Workers   int     `yaml:"workers"` // 0 = GOMAXPROCS
	TimeScale float64 `yaml:"time_scale"`
}

type DeferredConfig struct {
	Shards int `yaml:"shards"`
}

type CollisionConfig struct {
	LockShards     int            `yaml:"lock_shards"`
	ParallelCutoff int            `yaml:"parallel_cutoff"`
	SleepSafety    float64        `yaml:"sleep_safety"`
	WakePeriod     int            `yaml:"wake_period"`
	Workers        int            `yaml:"workers"`
	Layers         []LayerMapping `yaml:"layers"`
}

// LayerMapping lists the object layers a bullet layer can hit.
type LayerMapping struct {
	Bullet  uint16   `yaml:"bullet"`
	Objects []uint16 `yaml:"objects"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := decode(bytes.NewReader(defaultsYAML), &Config{})
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return cfg
}

// Load overlays the YAML document in r on top of the defaults and
// validates the result. Unknown keys are rejected.
func Load(r io.Reader) (*Config, error) {
	cfg, err := decode(r, Default())
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func decode(r io.Reader, into *Config) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return into, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Arena.Capacity < 2:
		return fmt.Errorf("%w: arena.capacity must be at least 2", ErrInvalidConfig)
	case c.Emitter.RefreshInterval < 1:
		return fmt.Errorf("%w: emitter.refresh_interval must be positive", ErrInvalidConfig)
	case c.Emitter.HoleScanLimit < 1:
		return fmt.Errorf("%w: emitter.hole_scan_limit must be positive", ErrInvalidConfig)
	case c.Emitter.EffectFrames < 1:
		return fmt.Errorf("%w: emitter.effect_frames must be positive", ErrInvalidConfig)
	case c.Execution.TimeScale < 0:
		return fmt.Errorf("%w: execution.time_scale must not be negative", ErrInvalidConfig)
	case c.Deferred.Shards < 1:
		return fmt.Errorf("%w: deferred.shards must be positive", ErrInvalidConfig)
	case c.Collision.LockShards < 1:
		return fmt.Errorf("%w: collision.lock_shards must be positive", ErrInvalidConfig)
	case c.Collision.WakePeriod < 1:
		return fmt.Errorf("%w: collision.wake_period must be positive", ErrInvalidConfig)
	case c.Collision.SleepSafety < 0:
		return fmt.Errorf("%w: collision.sleep_safety must not be negative", ErrInvalidConfig)
	case c.Telemetry.Enabled && c.Telemetry.Path == "":
		return fmt.Errorf("%w: telemetry.path is required when telemetry is enabled", ErrInvalidConfig)
	}
	seen := make(map[uint16]bool, len(c.Collision.Layers))
	for _, m := range c.Collision.Layers {
		if m.Bullet == 0 {
			return fmt.Errorf("%w: bullet layer 0 is reserved for non-colliding bullets", ErrInvalidConfig)
		}
		if seen[m.Bullet] {
			return fmt.Errorf("%w: bullet layer %d mapped twice", ErrInvalidConfig, m.Bullet)
		}
		seen[m.Bullet] = true
	}
	return nil
}
