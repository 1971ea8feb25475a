package slottimer

import (
	"time"
)

// default is a 16 slot table ticked every millisecond.
const (
	defaultCapacity      = 16
	defaultTickDuration  = time.Millisecond
	defaultRejectLogRate = 1 // rejection warnings per second
)

// Options is common options
type Options struct {
	Clock         Clock
	Logger        Logger
	Capacity      int
	TickDuration  time.Duration
	RejectLogRate int
}

// NewOptions creates options with defaults.
func NewOptions(opts ...Option) Options {
	var options = Options{
		Logger:        defaultLogger,
		Capacity:      defaultCapacity,
		TickDuration:  defaultTickDuration,
		RejectLogRate: defaultRejectLogRate,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Clock == nil {
		options.Clock = NewSystemClock()
	}

	return options
}

// Option is for setting options.
type Option func(*Options)

// WithClock sets the time source, nil is ignored.
func WithClock(clock Clock) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}

// WithLogger sets logger.
func WithLogger(logger Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithCapacity sets the number of slots, must be greater than 0.
// If not, it will be ignored.
func WithCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Capacity = n
		}
	}
}

// WithTickDuration sets the cadence used by Start, must be greater than 0.
// If not, it will be ignored.
func WithTickDuration(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.TickDuration = d
		}
	}
}

// WithRejectLogRate limits how many rejected registrations are logged per
// second, must be greater than 0. If not, it will be ignored.
func WithRejectLogRate(perSec int) Option {
	return func(o *Options) {
		if perSec > 0 {
			o.RejectLogRate = perSec
		}
	}
}
