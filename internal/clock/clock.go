package clock

import (
	"sync/atomic"
	"time"
)

// Clock supplies event timestamps in UNIX nanoseconds.
type Clock interface {
	// NowNs returns the current time in UNIX nanoseconds.
	NowNs() int64
	// Now returns the current time.
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (*System) NowNs() int64 {
	return time.Now().UnixNano()
}

func (*System) Now() time.Time {
	return time.Now()
}

// Manual is a settable clock for tests and deterministic replays.
type Manual struct {
	ns atomic.Int64
}

func NewManual(startNs int64) *Manual {
	c := &Manual{}
	c.ns.Store(startNs)
	return c
}

func (c *Manual) NowNs() int64 {
	return c.ns.Load()
}

func (c *Manual) Now() time.Time {
	return time.Unix(0, c.ns.Load())
}

// SetNs moves the clock to the given timestamp.
func (c *Manual) SetNs(ns int64) {
	c.ns.Store(ns)
}

// AdvanceNs moves the clock forward by the given duration in nanoseconds.
func (c *Manual) AdvanceNs(ns int64) int64 {
	return c.ns.Add(ns)
}
