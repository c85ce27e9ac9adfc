package clock

import "time"

// Fake is a manually driven Source. Sleep and SpinUntil advance the fake time instantly, which
// makes pacing logic deterministic in tests
type Fake struct {
	current time.Time
	slept   time.Duration
	sleeps  int
	spun    time.Duration
	spins   int
}

var _ Source = (*Fake)(nil)

// NewFake creates a Fake set to the given time. A zero time starts at a fixed date
func NewFake(t time.Time) *Fake {
	if t.IsZero() {
		t = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{current: t}
}

// Now returns the fake current time
func (f *Fake) Now() time.Time {
	return f.current
}

// Sleep advances the fake time by d. Negative durations are ignored
func (f *Fake) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	f.sleeps++
	f.slept += d
	f.current = f.current.Add(d)
}

// SpinUntil jumps the fake time to deadline. A deadline that already passed is ignored
func (f *Fake) SpinUntil(deadline time.Time) {
	if !deadline.After(f.current) {
		return
	}
	f.spins++
	f.spun += deadline.Sub(f.current)
	f.current = deadline
}

// Advance moves the fake time forward without counting as a sleep. This models work that takes time
func (f *Fake) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Slept returns the total time spent in Sleep
func (f *Fake) Slept() time.Duration {
	return f.slept
}

// Sleeps returns how many times Sleep was called with a positive duration
func (f *Fake) Sleeps() int {
	return f.sleeps
}

// Spun returns the total time spent in SpinUntil
func (f *Fake) Spun() time.Duration {
	return f.spun
}

// Spins returns how many times SpinUntil moved the fake time
func (f *Fake) Spins() int {
	return f.spins
}
