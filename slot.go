package slottimer

import "time"

// Run budgets understood by Register.
const (
	RunForever = 0
	RunOnce    = 1
)

// SlotID identifies a slot of the table, in range [0, Capacity).
type SlotID int

type action uint8

const (
	actionNone action = iota
	actionRun
	actionRunAndDelete
)

// slot is one entry of the timer table.
type slot struct {
	period   time.Duration // the time between two firings
	lastFire time.Duration // the clock reading of the last scheduled firing
	callback Callback      // zero when the slot is free
	enabled  bool
	runs     int    // completed runs
	maxRuns  int    // RunForever or a positive budget
	gen      uint64 // bumped every time the slot is taken
}

func (s *slot) inUse() bool {
	return !s.callback.IsZero()
}

// pending is a due-scan decision carried into the dispatch pass.
type pending struct {
	act      action
	gen      uint64
	callback Callback
}

// SlotInfo is a read-only view of an occupied slot.
type SlotInfo struct {
	Period   time.Duration
	LastFire time.Duration
	Enabled  bool
	Runs     int
	MaxRuns  int
}

// Stats are cumulative counters of a Scheduler.
type Stats struct {
	Fired    uint64 // callbacks invoked
	Expired  uint64 // slots freed after exhausting their run budget
	Rejected uint64 // registrations refused
	Panics   uint64 // callbacks that panicked
}
