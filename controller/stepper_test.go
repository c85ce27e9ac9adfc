package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedStep struct {
	clockwise bool
	d         time.Duration
}

type fakeDriver struct {
	steps []recordedStep
	err   error
}

func (d *fakeDriver) Step(clockwise bool, dur time.Duration) error {
	d.steps = append(d.steps, recordedStep{clockwise, dur})
	return d.err
}

func newTestStepper(t *testing.T, spr int) (*Stepper, *fakeDriver) {
	t.Helper()
	driver := &fakeDriver{}
	s, err := NewStepper(driver, spr)
	require.NoError(t, err)
	return s, driver
}

func TestRotateFor(t *testing.T) {
	tests := []struct {
		name             string
		spr              int
		degrees          float64
		d                time.Duration
		expectedSteps    int
		expectedPosition int
	}{
		{"HalfTurnClockwise", 512, 180, time.Second, 256, 256},
		{"QuarterTurnCounterClockwise", 512, -90, time.Second, 128, -128},
		{"FullTurn", 200, 360, 2 * time.Second, 200, 200},
		{"FractionalStepRoundsDown", 200, 10, time.Second, 5, 5},
		{"ThirdOfThreeSteps", 3, 120, time.Second, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, driver := newTestStepper(t, tt.spr)

			err := s.RotateFor(tt.degrees, tt.d)
			require.NoError(t, err)

			require.Len(t, driver.steps, tt.expectedSteps)
			for _, step := range driver.steps {
				assert.Equal(t, tt.degrees > 0, step.clockwise)
				assert.Equal(t, tt.d/time.Duration(tt.expectedSteps), step.d)
			}
			assert.Equal(t, tt.expectedPosition, s.Position())
		})
	}
}

func TestRotate(t *testing.T) {
	s, driver := newTestStepper(t, 200)

	require.NoError(t, s.Rotate(90, 60))

	require.Len(t, driver.steps, 50)
	assert.Equal(t, 5*time.Millisecond, driver.steps[0].d)
	assert.Equal(t, 50, s.Position())
	assert.InDelta(t, 90, s.PositionDegrees(), 1e-9)
	assert.InDelta(t, 0.25, s.Revolutions(), 1e-9)
}

func TestRotateNoMovement(t *testing.T) {
	t.Run("SmallerThanOneStep", func(t *testing.T) {
		s, driver := newTestStepper(t, 200)
		require.NoError(t, s.RotateFor(1, time.Second))
		assert.Empty(t, driver.steps)
		assert.Zero(t, s.Position())
	})

	t.Run("ZeroSpeed", func(t *testing.T) {
		s, driver := newTestStepper(t, 200)
		require.NoError(t, s.Rotate(90, 0))
		require.NoError(t, s.Rotate(90, -5))
		assert.Empty(t, driver.steps)
	})

	t.Run("ZeroDegrees", func(t *testing.T) {
		s, driver := newTestStepper(t, 200)
		require.NoError(t, s.Rotate(0, 10))
		assert.Empty(t, driver.steps)
	})
}

func TestRotateTo(t *testing.T) {
	s, driver := newTestStepper(t, 200)

	require.NoError(t, s.RotateTo(90, 60))
	assert.Equal(t, 50, s.Position())

	require.NoError(t, s.RotateTo(45, 60))
	assert.Equal(t, 25, s.Position())
	assert.InDelta(t, 45, s.PositionDegrees(), 1e-9)
	assert.False(t, driver.steps[len(driver.steps)-1].clockwise)

	require.NoError(t, s.RotateToFor(-45, time.Second))
	assert.Equal(t, -25, s.Position())
	assert.Len(t, driver.steps, 50+25+50)
}

func TestPositionIsNetSteps(t *testing.T) {
	s, _ := newTestStepper(t, 100)

	for range 7 {
		require.NoError(t, s.Step(true, 0))
	}
	for range 3 {
		require.NoError(t, s.Step(false, 0))
	}

	assert.Equal(t, 4, s.Position())
}

func TestStepErrors(t *testing.T) {
	t.Run("Unimplemented", func(t *testing.T) {
		s, err := NewStepper(nil, 200)
		require.NoError(t, err)

		assert.ErrorIs(t, s.Step(true, time.Millisecond), ErrUnimplemented)
		assert.ErrorIs(t, s.RotateFor(90, time.Second), ErrUnimplemented)
		assert.Zero(t, s.Position())
	})

	t.Run("DriverErrorStillCounts", func(t *testing.T) {
		s, driver := newTestStepper(t, 200)
		boom := errors.New("boom")
		driver.err = boom

		err := s.RotateFor(90, time.Second)
		assert.ErrorIs(t, err, boom)
		assert.EqualError(t, err, "step 1 of 50: boom")
		assert.Equal(t, 1, s.Position())
	})

	t.Run("InvalidStepsPerRevolution", func(t *testing.T) {
		for _, spr := range []int{0, -200} {
			_, err := NewStepper(&fakeDriver{}, spr)
			assert.ErrorIs(t, err, ErrInvalidStepsPerRevolution)
		}
	})
}
