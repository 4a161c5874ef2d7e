package ima

import (
	"strings"

	ierrors "github.com/ima-dev/ima/internal/errors"
)

// Policy decides what happens when an evaluator panics during a tick.
type Policy uint8

const (
	// Isolate marks the failing binding as failed, skips it on later ticks
	// and continues the pass.
	Isolate Policy = iota

	// Freeze lets the panic escape the tick. The next frame is never
	// requested, so every binding stops updating.
	Freeze
)

// String returns the config name of the policy.
func (p Policy) String() string {
	switch p {
	case Isolate:
		return "isolate"
	case Freeze:
		return "freeze"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "isolate" or "freeze".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "isolate":
		return Isolate, nil
	case "freeze":
		return Freeze, nil
	}
	return Isolate, ierrors.New("E204").WithDetailf("got %q", s)
}
