package controller

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/calvinmclean/stepctl"
	"github.com/calvinmclean/stepctl/clock"
)

// stepEpsilon keeps values like 0.5*512 from flooring to 255 after float error
const stepEpsilon = 1e-9

var (
	ErrUnimplemented             = errors.New("step primitive is not implemented")
	ErrInvalidStepsPerRevolution = errors.New("steps per revolution must be positive")
	ErrMoveTooLong               = errors.New("move duration is out of range")
)

// Driver performs one physical step in the given direction, taking d in total
type Driver interface {
	Step(clockwise bool, d time.Duration) error
}

// Stepper is an open-loop motion controller. It converts angles and speeds into steps and keeps a
// count of the steps it has commanded. The position is an estimate: a stalled motor still counts
type Stepper struct {
	driver             Driver
	stepsPerRevolution int
	position           int

	clock  *clock.Clock
	poll   time.Duration
	logger stepctl.Logger
}

// Option configures a Stepper
type Option func(*Stepper)

// WithLogger sets the logger used for motion messages
func WithLogger(l stepctl.Logger) Option {
	return func(s *Stepper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClockSource sets the time source of the Stepper's clock. Drivers created alongside the Stepper
// should share it so that all pacing happens on one timeline
func WithClockSource(src clock.Source) Option {
	return func(s *Stepper) {
		s.clock = clock.NewWithSource(src, 0)
	}
}

// WithPollInterval sets the longest sleep used while waiting between steps and coil phases.
// Non-positive values keep the default
func WithPollInterval(d time.Duration) Option {
	return func(s *Stepper) {
		s.poll = d
	}
}

// NewStepper creates a Stepper bound to driver. A nil driver is allowed but every step fails with ErrUnimplemented
func NewStepper(driver Driver, stepsPerRevolution int, opts ...Option) (*Stepper, error) {
	if stepsPerRevolution <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStepsPerRevolution, stepsPerRevolution)
	}

	s := &Stepper{
		driver:             driver,
		stepsPerRevolution: stepsPerRevolution,
		clock:              clock.New(0),
		logger:             stepctl.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clock.SetPollInterval(s.poll)

	return s, nil
}

// Clock returns the clock owned by the Stepper
func (s *Stepper) Clock() *clock.Clock {
	return s.clock
}

// StepsPerRevolution returns the number of steps in a full turn
func (s *Stepper) StepsPerRevolution() int {
	return s.stepsPerRevolution
}

// Position returns the commanded position in steps
func (s *Stepper) Position() int {
	return s.position
}

// PositionDegrees returns the commanded position in degrees
func (s *Stepper) PositionDegrees() float64 {
	return float64(s.position) / float64(s.stepsPerRevolution) * 360
}

// Revolutions returns the commanded position in revolutions
func (s *Stepper) Revolutions() float64 {
	return float64(s.position) / float64(s.stepsPerRevolution)
}

// Step performs a single step. The position is updated after the driver returns, even when it
// returns an error: the pulse may have reached the motor, and retrying could double-step
func (s *Stepper) Step(clockwise bool, d time.Duration) error {
	if s.driver == nil {
		return ErrUnimplemented
	}

	err := s.driver.Step(clockwise, d)
	s.position += stepctl.Clockwise(clockwise).Sign()
	return err
}

// Rotate turns by degrees at rpm. Positive degrees are clockwise. Non-positive speeds do nothing
func (s *Stepper) Rotate(degrees, rpm float64) error {
	if rpm <= 0 {
		s.logger.Warn("ignoring rotation with non-positive speed", "degrees", degrees, "rpm", rpm)
		return nil
	}
	d, err := moveDuration(math.Abs(degrees) / 360 / rpm * float64(time.Minute))
	if err != nil {
		return fmt.Errorf("rotate %g degrees at %g rpm: %w", degrees, rpm, err)
	}
	return s.RotateFor(degrees, d)
}

// RotateFor turns by degrees over d. Angles smaller than one step do not move the motor
func (s *Stepper) RotateFor(degrees float64, d time.Duration) error {
	steps := s.stepsFor(math.Abs(degrees) / 360)
	if steps == 0 {
		s.logger.Warn("rotation is smaller than one step, not moving", "degrees", degrees)
		return nil
	}

	stepDuration := d / time.Duration(steps)
	clockwise := degrees > 0

	s.logger.Debug("rotate",
		"degrees", degrees,
		"steps", steps,
		"direction", stepctl.Clockwise(clockwise),
		"step_duration", stepDuration,
	)

	s.clock.Reset(0)
	for i := range steps {
		err := s.Step(clockwise, stepDuration)
		if err != nil {
			return fmt.Errorf("step %d of %d: %w", i+1, steps, err)
		}
	}

	s.logger.Debug("rotate done", "elapsed", s.clock.Time(), "position", s.position)
	return nil
}

// RotateTo turns to an absolute position in degrees at rpm
func (s *Stepper) RotateTo(positionDegrees, rpm float64) error {
	return s.Rotate(positionDegrees-s.PositionDegrees(), rpm)
}

// RotateToFor turns to an absolute position in degrees over d
func (s *Stepper) RotateToFor(positionDegrees float64, d time.Duration) error {
	return s.RotateFor(positionDegrees-s.PositionDegrees(), d)
}

// stepsFor returns the whole number of steps in revolutions, rounding down
func (s *Stepper) stepsFor(revolutions float64) int {
	return int(math.Floor(revolutions*float64(s.stepsPerRevolution) + stepEpsilon))
}

// moveDuration converts nanoseconds into a Duration, rejecting values a Duration cannot hold
func moveDuration(ns float64) (time.Duration, error) {
	if math.IsNaN(ns) || ns >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %g ns", ErrMoveTooLong, ns)
	}
	return time.Duration(ns), nil
}
