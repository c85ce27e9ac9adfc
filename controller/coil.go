package controller

import (
	"fmt"
	"math"
	"time"

	"github.com/calvinmclean/stepctl"
	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/clock"
)

// StepBudget is the share of a step's time slot given to the step itself. Polling overshoots a little
// on every wait, so each step finishes early and the shared clock absorbs the rest of the slot
const StepBudget = 0.9

// CoilDriver steps a 4-wire unipolar stepper by writing a cyclic sequence of coil patterns
type CoilDriver struct {
	board    board.Board
	pins     []int
	patterns [][]board.Level
	source   clock.Source
	poll     time.Duration
}

var _ Driver = (*CoilDriver)(nil)

// NewCoilDriver validates the wiring and creates a CoilDriver. The pins must already be outputs
func NewCoilDriver(b board.Board, cfg StepperConfig, source clock.Source) (*CoilDriver, error) {
	patterns, err := cfg.patterns()
	if err != nil {
		return nil, err
	}
	if source == nil {
		source = clock.System{}
	}

	return &CoilDriver{
		board:    b,
		pins:     append([]int(nil), cfg.Pins...),
		patterns: patterns,
		source:   source,
	}, nil
}

// SetPollInterval changes the longest sleep used while waiting out a coil phase. Non-positive values
// restore the default
func (d *CoilDriver) SetPollInterval(poll time.Duration) {
	d.poll = poll
}

// Pins returns the coil pins in hardware order
func (d *CoilDriver) Pins() []int {
	return append([]int(nil), d.pins...)
}

// Step writes every pattern of the sequence, forward for clockwise and backward for
// counter-clockwise, and waits an equal share of dur after each one
func (d *CoilDriver) Step(clockwise bool, dur time.Duration) error {
	c := clock.NewWithSource(d.source, 0)
	c.SetPollInterval(d.poll)
	phase := dur / time.Duration(len(d.patterns))

	for i := range d.patterns {
		idx := i
		if !clockwise {
			idx = len(d.patterns) - 1 - i
		}

		err := d.apply(d.patterns[idx])
		if err != nil {
			return err
		}
		c.Tick(phase)
	}

	return nil
}

// Off drives every coil low so the motor stops drawing current. It loses holding torque
func (d *CoilDriver) Off() error {
	for _, pin := range d.pins {
		err := d.board.WriteDigital(pin, board.Low)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *CoilDriver) apply(levels []board.Level) error {
	for i, pin := range d.pins {
		err := d.board.WriteDigital(pin, levels[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// CoilStepper is a Stepper driven by a CoilDriver. On top of the degree based operations it moves in
// revolutions with a fixed step cadence
type CoilStepper struct {
	*Stepper
	driver *CoilDriver
}

// NewCoilStepper creates the CoilDriver and the Stepper around it
func NewCoilStepper(b board.Board, cfg StepperConfig, opts ...Option) (*CoilStepper, error) {
	s, err := NewStepper(nil, cfg.StepsPerRevolution, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating stepper: %w", err)
	}

	driver, err := NewCoilDriver(b, cfg, s.clock.Source())
	if err != nil {
		return nil, fmt.Errorf("error creating coil driver: %w", err)
	}
	driver.SetPollInterval(s.clock.PollInterval())
	s.driver = driver

	return &CoilStepper{Stepper: s, driver: driver}, nil
}

// Driver returns the underlying CoilDriver
func (s *CoilStepper) Driver() *CoilDriver {
	return s.driver
}

// Off de-energizes the coils. The position is kept
func (s *CoilStepper) Off() error {
	return s.driver.Off()
}

// Steps runs count steps over total. Each step starts on a fixed cadence of total/count and is given
// StepBudget of that slot to complete
func (s *CoilStepper) Steps(clockwise bool, count int, total time.Duration) error {
	if count <= 0 {
		return nil
	}

	slot := total / time.Duration(count)
	budget := time.Duration(float64(slot) * StepBudget)

	s.logger.Debug("steps",
		"count", count,
		"direction", stepctl.Clockwise(clockwise),
		"slot", slot,
		"budget", budget,
	)

	s.clock.Reset(0)
	for i := range count {
		err := s.Step(clockwise, budget)
		if err != nil {
			return fmt.Errorf("step %d of %d: %w", i+1, count, err)
		}
		s.clock.Tick(slot)
	}

	s.logger.Debug("steps done", "elapsed", s.clock.Time(), "position", s.position)
	return nil
}

// RotateRevolutions turns by revolutions at rpm. Positive values are clockwise. A zero distance or a
// non-positive speed does nothing
func (s *CoilStepper) RotateRevolutions(revolutions, rpm float64) error {
	if rpm <= 0 || revolutions == 0 {
		return nil
	}

	total, err := moveDuration(math.Abs(revolutions) / (rpm / 60) * float64(time.Second))
	if err != nil {
		return fmt.Errorf("rotate %g revolutions at %g rpm: %w", revolutions, rpm, err)
	}
	count := s.stepsFor(math.Abs(revolutions))

	return s.Steps(revolutions > 0, count, total)
}

// RotateToRevolutions turns to an absolute position in revolutions at rpm
func (s *CoilStepper) RotateToRevolutions(target, rpm float64) error {
	return s.RotateRevolutions(target-s.Revolutions(), rpm)
}
