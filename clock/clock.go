// Package clock paces stepper pulses against an absolute time reference. There are no timer
// interrupts: waiting sleeps in short chunks while the target is far away and busy-polls the
// time source for the last stretch, so overshoot does not depend on the OS sleep granularity.
package clock

import (
	"runtime"
	"time"
)

const (
	// DefaultPollInterval is the longest single sleep inside WaitUntil
	DefaultPollInterval = 500 * time.Microsecond

	// DefaultSpinWindow is how close to the target WaitUntil stops sleeping and busy-polls instead.
	// It has to cover the OS sleep overshoot, which is around a millisecond on common kernels
	DefaultSpinWindow = 2 * time.Millisecond
)

// Source provides the current time, a way to sleep and a way to busy-poll
type Source interface {
	Now() time.Time
	Sleep(time.Duration)
	// SpinUntil returns once Now is at or after deadline without sleeping
	SpinUntil(deadline time.Time)
}

// System is the wall clock. time.Now carries a monotonic reading, so Time never goes backwards
type System struct{}

var _ Source = System{}

// Now returns the current system time
func (System) Now() time.Time { return time.Now() }

// Sleep pauses the current goroutine
func (System) Sleep(d time.Duration) { time.Sleep(d) }

// SpinUntil polls time.Now and yields the processor between reads
func (System) SpinUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
		runtime.Gosched()
	}
}

// Clock measures elapsed time from an origin and waits for absolute targets on that timeline
type Clock struct {
	source   Source
	origin   time.Time
	lastTick time.Duration
	poll     time.Duration
	spin     time.Duration
}

// New creates a Clock on the system time source. offset is the elapsed time reported right after creation
func New(offset time.Duration) *Clock {
	return NewWithSource(System{}, offset)
}

// NewWithSource creates a Clock on the provided Source. A nil source uses the system clock
func NewWithSource(source Source, offset time.Duration) *Clock {
	if source == nil {
		source = System{}
	}
	c := &Clock{
		source: source,
		poll:   DefaultPollInterval,
		spin:   DefaultSpinWindow,
	}
	c.Reset(offset)
	return c
}

// Source returns the time source of the clock
func (c *Clock) Source() Source {
	return c.source
}

// SetPollInterval changes the longest sleep used while waiting. Non-positive values restore the default
func (c *Clock) SetPollInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultPollInterval
	}
	c.poll = d
}

// PollInterval returns the longest sleep used while waiting
func (c *Clock) PollInterval() time.Duration {
	return c.poll
}

// SetSpinWindow changes how close to a target WaitUntil starts busy-polling. Zero disables
// busy-polling and negative values restore the default
func (c *Clock) SetSpinWindow(d time.Duration) {
	if d < 0 {
		d = DefaultSpinWindow
	}
	c.spin = d
}

// Time returns the elapsed time since the origin
func (c *Clock) Time() time.Duration {
	return c.source.Now().Sub(c.origin)
}

// Reset moves the origin so that Time immediately returns t. The tick baseline restarts from there
func (c *Clock) Reset(t time.Duration) {
	c.origin = c.source.Now().Add(-t)
	c.lastTick = c.Time()
}

// WaitUntil blocks until Time() >= t. It never returns early. While more than the spin window
// remains it sleeps at most one poll interval at a time and never past the start of the window,
// then it busy-polls up to the target
func (c *Clock) WaitUntil(t time.Duration) {
	for {
		remaining := t - c.Time()
		if remaining <= 0 {
			return
		}
		if remaining <= c.spin {
			c.source.SpinUntil(c.origin.Add(t))
			continue
		}
		c.source.Sleep(min(remaining-c.spin, c.poll))
	}
}

// Tick waits until d has passed since the previous tick completed, then records the new tick.
// A late tick pushes every following tick back; there is no catch-up
func (c *Clock) Tick(d time.Duration) {
	c.WaitUntil(c.lastTick + d)
	c.lastTick = c.Time()
}

// LastTick returns the elapsed time recorded by the most recent Tick or Reset
func (c *Clock) LastTick() time.Duration {
	return c.lastTick
}
