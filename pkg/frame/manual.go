package frame

import "time"

// Manual is a frame driver that only advances when stepped.
// It is not safe for concurrent use.
type Manual struct {
	pending []Callback
	frames  uint64
	now     time.Time
	step    time.Duration
}

// NewManual creates a manual driver whose clock starts at the Unix epoch and
// advances by interval per frame. A zero interval defaults to 16ms.
func NewManual(interval time.Duration) *Manual {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Manual{now: time.Unix(0, 0), step: interval}
}

// RequestFrame implements Requester.
func (m *Manual) RequestFrame(cb Callback) {
	if cb == nil {
		return
	}
	m.pending = append(m.pending, cb)
}

// Pending reports whether a callback is waiting for the next frame.
func (m *Manual) Pending() bool { return len(m.pending) > 0 }

// Frames returns the number of frames stepped.
func (m *Manual) Frames() uint64 { return m.frames }

// Step runs every callback requested before this frame. Callbacks requested
// while stepping wait for the next frame. A panicking callback is reported
// as a *PanicError; the remaining callbacks of the frame still run.
func (m *Manual) Step() error {
	if len(m.pending) == 0 {
		return nil
	}
	batch := m.pending
	m.pending = nil
	m.frames++
	m.now = m.now.Add(m.step)
	var first error
	for _, cb := range batch {
		if err := invoke(cb, m.now); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run steps up to n frames, stopping early when nothing is pending or a
// callback panics. It returns the number of frames stepped.
func (m *Manual) Run(n int) (int, error) {
	for i := 0; i < n; i++ {
		if !m.Pending() {
			return i, nil
		}
		if err := m.Step(); err != nil {
			return i + 1, err
		}
	}
	return n, nil
}
