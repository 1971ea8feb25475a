package slottimer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallbackVariants(t *testing.T) {
	should := require.New(t)

	should.True(Callback{}.IsZero())
	should.True(Plain(nil).IsZero())
	should.True(WithPayload(nil, 1).IsZero())

	calls := 0
	c := Plain(func() { calls++ })
	should.False(c.IsZero())
	should.Nil(c.Payload())
	c.invoke()
	should.Equal(1, calls)

	var got any
	c = WithPayload(NewHandlerFunc(func(p any) { got = p }), "pin13")
	should.Equal("pin13", c.Payload())
	c.invoke()
	should.Equal("pin13", got)

	// an absent callback does nothing
	Callback{}.invoke()
}
