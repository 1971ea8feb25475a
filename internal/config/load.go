package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultCapacity = 16
	DefaultTick     = time.Millisecond
)

// Load reads, decodes and validates the file at path.
// Files ending in .yaml or .yml are YAML, anything else is JSON.
func Load(path string) (*Resolved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data, using path only to pick the format.
func Parse(path string, data []byte) (*Resolved, error) {
	j, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg.Resolve()
}

// Resolve applies defaults and validates every field.
func (c Config) Resolve() (*Resolved, error) {
	r := &Resolved{
		Capacity: c.Capacity,
		Log:      c.Log,
		Metrics:  c.Metrics,
	}
	if r.Capacity < 0 {
		return nil, errors.New("capacity: must be >= 0")
	}
	if r.Capacity == 0 {
		r.Capacity = DefaultCapacity
	}
	if strings.TrimSpace(r.Log.Level) == "" {
		r.Log.Level = "info"
	}

	tick, err := parseDurationOr("tick", c.Tick, DefaultTick)
	if err != nil {
		return nil, err
	}
	r.Tick = tick

	if len(c.Timers) > r.Capacity {
		return nil, fmt.Errorf("timers: %d timers exceed capacity %d", len(c.Timers), r.Capacity)
	}

	seen := make(map[string]struct{}, len(c.Timers))
	for i, tc := range c.Timers {
		path := fmt.Sprintf("timers[%d]", i)
		name := strings.TrimSpace(tc.Name)
		if name == "" {
			return nil, fmt.Errorf("%s.name: required", path)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s.name: duplicate %q", path, name)
		}
		seen[name] = struct{}{}

		period, err := parseDuration(path+".period", tc.Period)
		if err != nil {
			return nil, err
		}
		if period <= 0 {
			return nil, fmt.Errorf("%s.period: must be > 0", path)
		}
		if period < tick {
			return nil, fmt.Errorf("%s.period: %v is shorter than tick %v", path, period, tick)
		}
		if tc.Runs < 0 {
			return nil, fmt.Errorf("%s.runs: must be >= 0", path)
		}

		r.Timers = append(r.Timers, Timer{
			Name:     name,
			Period:   period,
			Runs:     tc.Runs,
			Message:  tc.Message,
			Disabled: tc.Disabled,
		})
	}

	return r, nil
}
