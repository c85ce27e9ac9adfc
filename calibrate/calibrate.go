// Package calibrate finds how fast a stepper can really turn. It repeats the same rotation at
// increasing speeds and stops once the measured time no longer shrinks in proportion to the
// requested speed, which is what happens when the motor or the pin transport cannot keep up.
package calibrate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/calvinmclean/stepctl"
	"github.com/calvinmclean/stepctl/clock"
)

const (
	DefaultTestAngle     = 180
	DefaultMargin        = 50 * time.Millisecond
	DefaultMaxIterations = 100
)

var (
	ErrInvalidConfig     = errors.New("invalid calibration config")
	ErrUnstableBaseSpeed = errors.New("base speed already exceeds the timing margin")
)

// Rotator turns a motor by degrees at rpm and blocks until done
type Rotator interface {
	Rotate(degrees, rpm float64) error
}

// Config has the parameters of a max speed search. Speeds are in RPM
type Config struct {
	BaseSpeed      float64 `json:"base_speed"`
	SpeedIncrement float64 `json:"speed_increment"`
	// TestAngle is rotated on every trial, in degrees. Zero uses DefaultTestAngle
	TestAngle float64 `json:"test_angle,omitempty"`
	// Margin is the largest accepted difference between measured and expected time
	Margin time.Duration `json:"margin,omitempty"`
	// MaxIterations bounds the number of trials after the base measurement. Zero uses DefaultMaxIterations
	MaxIterations int `json:"max_iterations,omitempty"`
	// SpeedCeiling stops the search before testing a faster speed. Zero means no ceiling
	SpeedCeiling float64 `json:"speed_ceiling,omitempty"`
}

// DefaultConfig starts at 5 RPM and adds 1 RPM per trial
func DefaultConfig() Config {
	return Config{
		BaseSpeed:      5,
		SpeedIncrement: 1,
		TestAngle:      DefaultTestAngle,
		Margin:         DefaultMargin,
		MaxIterations:  DefaultMaxIterations,
	}
}

func (cfg Config) withDefaults() Config {
	if cfg.TestAngle == 0 {
		cfg.TestAngle = DefaultTestAngle
	}
	if cfg.Margin == 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return cfg
}

// Validate checks that the search can make progress
func (cfg Config) Validate() error {
	switch {
	case cfg.BaseSpeed <= 0:
		return fmt.Errorf("%w: base speed must be positive", ErrInvalidConfig)
	case cfg.SpeedIncrement <= 0:
		return fmt.Errorf("%w: speed increment must be positive", ErrInvalidConfig)
	case cfg.Margin < 0:
		return fmt.Errorf("%w: margin must not be negative", ErrInvalidConfig)
	case cfg.MaxIterations < 0:
		return fmt.Errorf("%w: max iterations must not be negative", ErrInvalidConfig)
	case cfg.SpeedCeiling < 0:
		return fmt.Errorf("%w: speed ceiling must not be negative", ErrInvalidConfig)
	case cfg.SpeedCeiling > 0 && cfg.SpeedCeiling < cfg.BaseSpeed:
		return fmt.Errorf("%w: speed ceiling is below the base speed", ErrInvalidConfig)
	}
	return nil
}

// Trial is one timed rotation
type Trial struct {
	Speed    float64
	Elapsed  time.Duration
	Expected time.Duration
	Diff     time.Duration
}

// Passed reports whether the trial stayed within margin
func (t Trial) Passed(margin time.Duration) bool {
	return t.Diff <= margin
}

// Result is the outcome of MaxSpeed
type Result struct {
	// MaxSpeed is the fastest speed that stayed within the margin
	MaxSpeed float64
	// BaseTime is the time measured for the test angle at the base speed
	BaseTime time.Duration
	Trials   []Trial
	// Capped is set when MaxIterations or SpeedCeiling ended the search before the margin was exceeded
	Capped bool
	Margin time.Duration
}

// Option configures MaxSpeed
type Option func(*options)

type options struct {
	source clock.Source
	logger stepctl.Logger
}

// WithSource measures elapsed time on src instead of the system clock
func WithSource(src clock.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithLogger reports every trial to l at debug level
func WithLogger(l stepctl.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// MaxSpeed measures the time for cfg.TestAngle at cfg.BaseSpeed, then repeats the rotation starting at
// the base speed and adding cfg.SpeedIncrement each time. The time of a healthy trial is inversely
// proportional to its speed. The first trial off by more than cfg.Margin ends the search and the speed
// before it is returned
func MaxSpeed(motor Rotator, cfg Config, opts ...Option) (Result, error) {
	cfg = cfg.withDefaults()
	err := cfg.Validate()
	if err != nil {
		return Result{}, err
	}

	o := options{
		source: clock.System{},
		logger: stepctl.Discard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := clock.NewWithSource(o.source, 0)

	measure := func(speed float64) (time.Duration, error) {
		c.Reset(0)
		err := motor.Rotate(cfg.TestAngle, speed)
		if err != nil {
			return 0, fmt.Errorf("rotate at %g rpm: %w", speed, err)
		}
		return c.Time(), nil
	}

	o.logger.Info("stepper max speed test", "base_speed", cfg.BaseSpeed, "increment", cfg.SpeedIncrement, "angle", cfg.TestAngle)

	baseTime, err := measure(cfg.BaseSpeed)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		BaseTime: baseTime,
		Margin:   cfg.Margin,
	}

	speed := cfg.BaseSpeed
	for i := 0; ; i++ {
		if i >= cfg.MaxIterations || (cfg.SpeedCeiling > 0 && speed > cfg.SpeedCeiling) {
			result.Capped = true
			o.logger.Warn("max speed search stopped before exceeding the margin", "trials", len(result.Trials), "max_speed", result.MaxSpeed)
			return result, nil
		}

		elapsed, err := measure(speed)
		if err != nil {
			return result, err
		}

		expected := time.Duration(float64(baseTime) * cfg.BaseSpeed / speed)
		trial := Trial{
			Speed:    speed,
			Elapsed:  elapsed,
			Expected: expected,
			Diff:     time.Duration(math.Abs(float64(elapsed - expected))),
		}
		result.Trials = append(result.Trials, trial)

		o.logger.Debug("testing speed",
			"speed", speed,
			"elapsed", elapsed,
			"expected", expected,
			"diff", trial.Diff,
		)

		if !trial.Passed(cfg.Margin) {
			if i == 0 {
				return result, fmt.Errorf("%w: %s off at %g rpm", ErrUnstableBaseSpeed, trial.Diff, speed)
			}
			o.logger.Info("max speed found", "max_speed", result.MaxSpeed)
			return result, nil
		}

		result.MaxSpeed = speed
		speed += cfg.SpeedIncrement
	}
}
