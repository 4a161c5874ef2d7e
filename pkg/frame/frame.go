// Package frame provides the frame callbacks that drive the ima scheduler.
//
// A Requester schedules one callback for the next frame, the way
// requestAnimationFrame does in a browser. Manual is a deterministic driver
// for tests and headless benchmarks; Loop is a real-time cooperative event
// loop that interleaves frames with posted tasks on a single goroutine.
package frame

import (
	"fmt"
	"time"
)

// Callback runs at the start of a frame.
type Callback func(now time.Time)

// Requester schedules a callback for the next frame.
type Requester interface {
	RequestFrame(cb Callback)
}

// PanicError is a panic recovered from a frame callback.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("frame callback panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// invoke runs cb and converts a panic into a *PanicError.
func invoke(cb Callback, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	cb(now)
	return nil
}
