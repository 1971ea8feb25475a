package slottimer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler multiplexes many logical timers onto one periodic tick.
//
// The table has a fixed number of slots allocated once by New. Tick or
// TickAt is meant to be called at a fixed cadence, either by Start or by an
// external driver. All other methods may be called at any time from any
// goroutine, including from inside a timer callback.
type Scheduler struct {
	Options     // inherited options
	slots       []slot
	pending     []pending // due-scan results, one per slot
	active      int       // number of occupied slots
	initialized bool

	fired    atomic.Uint64
	expired  atomic.Uint64
	rejected atomic.Uint64
	panics   atomic.Uint64

	rejectLog   *rate.Limiter
	ticker      *time.Ticker
	stopChannel chan struct{} // channel for stopping the driver loop
	done        chan struct{} // closed when the driver loop has returned
	mu          sync.Mutex    // guards the table, held for every slot mutation
	tickMu      sync.Mutex    // serializes ticks
}

// New creates a scheduler. The table is initialised by the first
// registration or by an explicit call to Init.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		Options: NewOptions(opts...),
	}
	s.slots = make([]slot, s.Options.Capacity)
	s.pending = make([]pending, s.Options.Capacity)
	s.rejectLog = rate.NewLimiter(rate.Limit(s.RejectLogRate), s.RejectLogRate)

	return s
}

// Init frees every slot and stamps it with the current clock reading.
// Timers registered before the call are discarded.
func (s *Scheduler) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
}

func (s *Scheduler) init() {
	now := s.Clock.Now()
	for i := range s.slots {
		// the generation survives so an in-flight dispatch cannot delete a new timer
		s.slots[i] = slot{lastFire: now, gen: s.slots[i].gen}
	}
	s.active = 0
	s.initialized = true
}

// Start drives the scheduler with a ticker firing every TickDuration.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopChannel != nil {
		return
	}
	s.ticker = time.NewTicker(s.TickDuration)
	s.stopChannel = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.ticker, s.stopChannel, s.done)
}

// Stop stops the ticker started by Start and waits for a tick in flight to
// finish, so no callback runs after Stop returns. It is safe to call it more
// than once, but it must not be called from a timer callback while the
// scheduler is driven by Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopChannel == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopChannel)
	done := s.done
	s.stopChannel = nil
	s.done = nil
	s.mu.Unlock()

	<-done
}

func (s *Scheduler) run(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-stop:
			return
		}
	}
}

// Register takes the lowest free slot for a timer firing every period.
// maxRuns is RunForever or the number of times the callback runs before
// the slot is freed. On failure NoSlot is returned with ErrInvalidCallback,
// ErrInvalidPeriod, ErrInvalidRuns or ErrCapacityExhausted.
func (s *Scheduler) Register(period time.Duration, cb Callback, maxRuns int) (SlotID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		s.init()
	}

	id, err := s.register(period, cb, maxRuns)
	if err != nil {
		s.rejected.Add(1)
		if s.rejectLog.Allow() {
			s.Logger.Printf("register timer failed, period: %v, active: %d/%d: %v\n", period, s.active, len(s.slots), err)
		}
		return NoSlot, err
	}

	return id, nil
}

func (s *Scheduler) register(period time.Duration, cb Callback, maxRuns int) (SlotID, error) {
	if cb.IsZero() {
		return NoSlot, ErrInvalidCallback
	}
	if period <= 0 {
		return NoSlot, ErrInvalidPeriod
	}
	if maxRuns < 0 {
		return NoSlot, fmt.Errorf("%w: %d", ErrInvalidRuns, maxRuns)
	}

	i := s.findFirstFreeSlot()
	if i < 0 {
		return NoSlot, ErrCapacityExhausted
	}

	sl := &s.slots[i]
	sl.period = period
	sl.maxRuns = maxRuns
	sl.runs = 0
	sl.enabled = true
	sl.lastFire = s.Clock.Now()
	sl.gen++
	sl.callback = cb // published last

	s.active++

	return SlotID(i), nil
}

// findFirstFreeSlot returns the lowest free index or -1 when the table is full.
func (s *Scheduler) findFirstFreeSlot() int {
	if s.active >= len(s.slots) {
		return -1
	}
	for i := range s.slots {
		if !s.slots[i].inUse() {
			return i
		}
	}

	return -1
}

// SetTimer runs fn every period, n times, then frees the slot.
func (s *Scheduler) SetTimer(period time.Duration, fn func(), n int) (SlotID, error) {
	return s.Register(period, Plain(fn), n)
}

// SetTimerWithPayload is SetTimer for a handler receiving payload.
func (s *Scheduler) SetTimerWithPayload(period time.Duration, h Handler, payload any, n int) (SlotID, error) {
	return s.Register(period, WithPayload(h, payload), n)
}

// SetInterval runs fn every period until the slot is cancelled.
func (s *Scheduler) SetInterval(period time.Duration, fn func()) (SlotID, error) {
	return s.Register(period, Plain(fn), RunForever)
}

// SetIntervalWithPayload is SetInterval for a handler receiving payload.
func (s *Scheduler) SetIntervalWithPayload(period time.Duration, h Handler, payload any) (SlotID, error) {
	return s.Register(period, WithPayload(h, payload), RunForever)
}

// SetTimeout runs fn once after period.
func (s *Scheduler) SetTimeout(period time.Duration, fn func()) (SlotID, error) {
	return s.Register(period, Plain(fn), RunOnce)
}

// SetTimeoutWithPayload is SetTimeout for a handler receiving payload.
func (s *Scheduler) SetTimeoutWithPayload(period time.Duration, h Handler, payload any) (SlotID, error) {
	return s.Register(period, WithPayload(h, payload), RunOnce)
}

// Tick runs TickAt with the current clock reading.
func (s *Scheduler) Tick() {
	s.TickAt(s.Clock.Now())
}

// TickAt fires every enabled timer that is due at now.
//
// The due-scan decides which slots fire before any callback runs, so a
// callback cancelling or changing another slot only affects later ticks.
// A timer that missed several periods fires once and its schedule jumps
// forward by whole periods. A tick started while another one is still
// dispatching is dropped; the next tick catches up.
func (s *Scheduler) TickAt(now time.Duration) {
	if !s.tickMu.TryLock() {
		return
	}
	defer s.tickMu.Unlock()

	if s.scan(now) == 0 {
		return
	}
	s.dispatch()
}

// scan computes the pending action of every slot and returns how many fire.
func (s *Scheduler) scan(now time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := 0
	for i := range s.slots {
		s.pending[i] = pending{}

		sl := &s.slots[i]
		if !sl.inUse() {
			continue
		}

		elapsed := now - sl.lastFire
		if elapsed < sl.period {
			continue
		}
		skips := elapsed / sl.period
		sl.lastFire += sl.period * skips

		if !sl.enabled {
			continue
		}

		act := actionNone
		if sl.maxRuns == RunForever {
			act = actionRun
		} else if sl.runs < sl.maxRuns {
			act = actionRun
			sl.runs++
			if sl.runs >= sl.maxRuns {
				act = actionRunAndDelete
			}
		}
		if act == actionNone {
			continue
		}

		s.pending[i] = pending{act: act, gen: sl.gen, callback: sl.callback}
		due++
	}

	return due
}

func (s *Scheduler) dispatch() {
	for i := range s.pending {
		p := s.pending[i]
		if p.act == actionNone {
			continue
		}
		s.pending[i] = pending{}

		s.invoke(SlotID(i), p.callback)

		if p.act == actionRunAndDelete {
			s.expire(i, p.gen)
		}
	}
}

func (s *Scheduler) invoke(id SlotID, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.Logger.Printf("timer %d callback panic: %v\n", id, r)
		}
	}()

	s.fired.Add(1)
	cb.invoke()
}

// expire frees slot i if it still holds the timer of generation gen.
func (s *Scheduler) expire(i int, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.slots[i].inUse() || s.slots[i].gen != gen {
		return
	}
	s.free(i)
	s.expired.Add(1)
}

// free zeroes slot i. The caller holds mu and checked the slot is in use.
func (s *Scheduler) free(i int) {
	sl := &s.slots[i]
	sl.callback = Callback{} // retracted first
	*sl = slot{lastFire: s.Clock.Now(), gen: sl.gen}
	s.active--
}

func (s *Scheduler) valid(id SlotID) bool {
	return id >= 0 && int(id) < len(s.slots)
}

// Cancel frees the slot. Out of range ids and free slots are ignored.
func (s *Scheduler) Cancel(id SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) || s.active == 0 || !s.slots[id].inUse() {
		return
	}
	s.free(int(id))
}

// Reschedule changes the period of an occupied slot and restarts its
// schedule from now. Run counters are kept.
func (s *Scheduler) Reschedule(id SlotID, period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) || !s.slots[id].inUse() {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, id)
	}
	s.slots[id].period = period
	s.slots[id].lastFire = s.Clock.Now()

	return nil
}

// Restart restarts the schedule of the slot from now.
func (s *Scheduler) Restart(id SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) {
		return
	}
	s.slots[id].lastFire = s.Clock.Now()
}

// Enable lets a due slot fire again.
func (s *Scheduler) Enable(id SlotID) {
	s.setEnabled(id, func(bool) bool { return true })
}

// Disable keeps the slot and its schedule but stops it from firing.
// A disabled slot keeps catching up, so enabling it later does not
// release a backlog of firings.
func (s *Scheduler) Disable(id SlotID) {
	s.setEnabled(id, func(bool) bool { return false })
}

// Toggle flips the enabled flag of the slot.
func (s *Scheduler) Toggle(id SlotID) {
	s.setEnabled(id, func(v bool) bool { return !v })
}

func (s *Scheduler) setEnabled(id SlotID, f func(bool) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) {
		return
	}
	s.slots[id].enabled = f(s.slots[id].enabled)
}

// EnableAll enables every occupied RunForever slot. Timers with a run
// budget are left alone.
func (s *Scheduler) EnableAll() {
	s.setAllEnabled(true)
}

// DisableAll disables every occupied RunForever slot. Timers with a run
// budget are left alone.
func (s *Scheduler) DisableAll() {
	s.setAllEnabled(false)
}

func (s *Scheduler) setAllEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].inUse() && s.slots[i].maxRuns == RunForever {
			s.slots[i].enabled = v
		}
	}
}

// IsEnabled reports the enabled flag of the slot, false for an out of range id.
func (s *Scheduler) IsEnabled(id SlotID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) {
		return false
	}
	return s.slots[id].enabled
}

// ActiveCount returns the number of occupied slots.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Capacity returns the number of slots.
func (s *Scheduler) Capacity() int {
	return len(s.slots)
}

// Slot returns a snapshot of an occupied slot.
func (s *Scheduler) Slot(id SlotID) (SlotInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid(id) || !s.slots[id].inUse() {
		return SlotInfo{}, false
	}
	sl := s.slots[id]
	return SlotInfo{
		Period:   sl.period,
		LastFire: sl.lastFire,
		Enabled:  sl.enabled,
		Runs:     sl.runs,
		MaxRuns:  sl.maxRuns,
	}, true
}

// Stats returns the cumulative counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Fired:    s.fired.Load(),
		Expired:  s.expired.Load(),
		Rejected: s.rejected.Load(),
		Panics:   s.panics.Load(),
	}
}
