package slottimer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperjiang/slottimer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	should := require.New(t)

	clock := slottimer.NewManualClock(0)
	s := slottimer.New(slottimer.WithClock(clock), slottimer.WithCapacity(2))
	_, err := s.SetInterval(time.Millisecond, func() {})
	should.NoError(err)
	_, err = s.SetTimeout(time.Millisecond, func() {})
	should.NoError(err)
	_, err = s.SetTimeout(time.Millisecond, func() {})
	should.ErrorIs(err, slottimer.ErrCapacityExhausted)

	clock.Set(time.Millisecond)
	s.Tick()

	c := slottimer.NewCollector(s, "", prometheus.Labels{"timer": "tim1"})
	should.Equal(6, testutil.CollectAndCount(c))

	expected := `
# HELP slottimer_active_timers Number of occupied timer slots.
# TYPE slottimer_active_timers gauge
slottimer_active_timers{timer="tim1"} 1
# HELP slottimer_fired_total Timer callbacks invoked.
# TYPE slottimer_fired_total counter
slottimer_fired_total{timer="tim1"} 2
# HELP slottimer_rejected_total Timer registrations refused.
# TYPE slottimer_rejected_total counter
slottimer_rejected_total{timer="tim1"} 1
`
	should.NoError(testutil.CollectAndCompare(c, strings.NewReader(expected),
		"slottimer_active_timers", "slottimer_fired_total", "slottimer_rejected_total"))

	reg := prometheus.NewPedanticRegistry()
	should.NoError(reg.Register(c))
}
