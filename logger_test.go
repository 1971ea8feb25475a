package slottimer

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger(t *testing.T) {
	should := require.New(t)

	var buf bytes.Buffer
	l := ZerologLogger(zerolog.New(&buf))
	l.Printf("timer %d callback panic: %v\n", 3, "boom")

	should.JSONEq(`{"level":"warn","component":"slottimer","message":"timer 3 callback panic: boom"}`, buf.String())
}

func TestRejectedRegistrationsAreRateLimited(t *testing.T) {
	should := require.New(t)

	var lines int
	s := New(
		WithCapacity(1),
		WithClock(NewManualClock(0)),
		WithRejectLogRate(2),
		WithLogger(LoggerFunc(func(string, ...any) { lines++ })),
	)
	_, err := s.SetInterval(time.Millisecond, func() {})
	should.NoError(err)

	for i := 0; i < 10; i++ {
		_, err = s.SetInterval(time.Millisecond, func() {})
		should.ErrorIs(err, ErrCapacityExhausted)
	}
	should.Equal(uint64(10), s.Stats().Rejected)
	should.Equal(2, lines, "burst of the limiter")
}
