package slottimer

import "errors"

// NoSlot is returned by the registration functions when no slot was taken.
const NoSlot SlotID = -1

var (
	// ErrCapacityExhausted is returned when every slot of the table is in use.
	ErrCapacityExhausted = errors.New("slottimer: no free slot")
	// ErrInvalidCallback is returned when a registration has no callback.
	ErrInvalidCallback = errors.New("slottimer: callback is nil")
	// ErrInvalidSlot is returned for an out of range or free slot id.
	ErrInvalidSlot = errors.New("slottimer: invalid slot id")
	// ErrInvalidPeriod is returned for a period that is not greater than 0.
	ErrInvalidPeriod = errors.New("slottimer: period must be greater than 0")
	// ErrInvalidRuns is returned for a negative run budget.
	ErrInvalidRuns = errors.New("slottimer: negative run budget")
)
