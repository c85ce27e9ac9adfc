package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/stepctl/clock"
)

type recordedMover struct {
	moves []int32
	off   int
}

func (m *recordedMover) Move(steps int32) { m.moves = append(m.moves, steps) }
func (m *recordedMover) Off()             { m.off++ }

func TestEasyDriverStep(t *testing.T) {
	fake := clock.NewFake(time.Time{})
	mover := &recordedMover{}
	s, err := NewStepper(nil, 200, WithClockSource(fake), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	driver := &EasyDriver{device: mover, source: s.Clock().Source(), poll: s.Clock().PollInterval()}
	s.driver = driver

	start := fake.Now()
	require.NoError(t, s.RotateFor(3.6, 20*time.Millisecond))
	require.NoError(t, s.Step(false, 10*time.Millisecond))

	assert.Equal(t, []int32{1, 1, -1}, mover.moves)
	assert.Equal(t, 1, s.Position())
	// every step is paced on the injected source, 8ms of each 10ms in 1ms sleeps
	assert.Equal(t, 30*time.Millisecond, fake.Now().Sub(start))
	assert.Equal(t, 3*8, fake.Sleeps())
	assert.Equal(t, 3, fake.Spins())

	require.NoError(t, driver.Off())
	assert.Equal(t, 1, mover.off)
}
