package config

import "time"

// Config is the daemon configuration file.
//
// All durations are Go duration strings (e.g. "1ms", "500ms", "2s").
//
// Defaults (when fields are omitted/zero):
//   - capacity: 16
//   - tick: "1ms"
//   - log.level: "info"
//   - metrics.listen: "" (disabled)
type Config struct {
	Capacity int           `json:"capacity,omitempty"`
	Tick     string        `json:"tick,omitempty"`
	Log      LogConfig     `json:"log"`
	Metrics  MetricsConfig `json:"metrics"`
	Timers   []TimerConfig `json:"timers"`
}

type LogConfig struct {
	Level   string `json:"level,omitempty"`
	Console bool   `json:"console,omitempty"`
}

type MetricsConfig struct {
	// Listen is the address serving /metrics, empty disables it.
	Listen string `json:"listen,omitempty"`
}

// TimerConfig describes one timer registered at startup.
// Runs is 0 for a timer that never expires.
type TimerConfig struct {
	Name    string `json:"name"`
	Period  string `json:"period"`
	Runs    int    `json:"runs,omitempty"`
	Message string `json:"message,omitempty"`

	// Disabled registers the timer without letting it fire.
	Disabled bool `json:"disabled,omitempty"`
}

// Timer is a validated TimerConfig.
type Timer struct {
	Name     string
	Period   time.Duration
	Runs     int
	Message  string
	Disabled bool
}

// Resolved is a validated Config with parsed durations.
type Resolved struct {
	Capacity int
	Tick     time.Duration
	Log      LogConfig
	Metrics  MetricsConfig
	Timers   []Timer
}
