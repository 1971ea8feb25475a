package slottimer

// Handler is the payload taking callback of a timer.
type Handler interface {
	Handle(param any)
}

// HandlerFunc is a function type that implements the Handler interface.
type HandlerFunc func(param any)

func (f HandlerFunc) Handle(param any) {
	f(param)
}

// NewHandlerFunc creates a new HandlerFunc.
// It is a convenience function to create a Handler from a function.
func NewHandlerFunc(f HandlerFunc) Handler {
	return HandlerFunc(f)
}

type callbackKind uint8

const (
	kindNone callbackKind = iota
	kindPlain
	kindPayload
)

// Callback is what a timer invokes when it fires.
// It is either a plain function or a Handler with a payload.
// The zero value is an absent callback and is rejected by Register.
type Callback struct {
	kind    callbackKind
	plain   func()
	handler Handler
	payload any
}

// Plain wraps a function that takes no argument.
func Plain(fn func()) Callback {
	if fn == nil {
		return Callback{}
	}
	return Callback{kind: kindPlain, plain: fn}
}

// WithPayload wraps a handler that receives payload on every invocation.
func WithPayload(h Handler, payload any) Callback {
	if h == nil {
		return Callback{}
	}
	return Callback{kind: kindPayload, handler: h, payload: payload}
}

// IsZero reports whether the callback is absent.
func (c Callback) IsZero() bool {
	return c.kind == kindNone
}

// Payload returns the payload of a WithPayload callback, nil otherwise.
func (c Callback) Payload() any {
	if c.kind != kindPayload {
		return nil
	}
	return c.payload
}

func (c Callback) invoke() {
	switch c.kind {
	case kindPlain:
		c.plain()
	case kindPayload:
		c.handler.Handle(c.payload)
	}
}
