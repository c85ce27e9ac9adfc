package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinmclean/stepctl/board"
)

// CoilCount is the number of coil wires of a unipolar stepper driven by a CoilDriver
const CoilCount = 4

var (
	ErrPinCount        = errors.New("wrong number of pins")
	ErrSequenceLength  = errors.New("wrong number of coil patterns")
	ErrPatternWidth    = errors.New("coil pattern width does not match pin count")
	ErrInvalidPattern  = errors.New("coil pattern must only contain 0 and 1")
	ErrUnknownStepMode = errors.New("unknown step mode")
)

// StepMode selects the built-in coil sequence
type StepMode int

const (
	// StepModeFull energizes two coils at a time (1100-0110-0011-1001). This is the default
	StepModeFull StepMode = iota
	// StepModeWave energizes one coil at a time (1000-0100-0010-0001)
	StepModeWave
)

var (
	// fullStepSequence is written forward for clockwise and backward for counter-clockwise steps
	fullStepSequence = []string{
		"1100",
		"0110",
		"0011",
		"1001",
	}

	waveStepSequence = []string{
		"1000",
		"0100",
		"0010",
		"0001",
	}
)

func (m StepMode) String() string {
	switch m {
	case StepModeFull:
		return "full"
	case StepModeWave:
		return "wave"
	default:
		return "unknown"
	}
}

// Sequence returns a copy of the coil patterns for the mode
func (m StepMode) Sequence() ([]string, error) {
	switch m {
	case StepModeFull:
		return append([]string(nil), fullStepSequence...), nil
	case StepModeWave:
		return append([]string(nil), waveStepSequence...), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStepMode, int(m))
	}
}

// MarshalText encodes the mode by name
func (m StepMode) MarshalText() ([]byte, error) {
	if _, err := m.Sequence(); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses "full" or "wave"
func (m *StepMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "full":
		*m = StepModeFull
	case "wave":
		*m = StepModeWave
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStepMode, string(text))
	}
	return nil
}

// StepperConfig has the wiring and motor constants of a 4-wire stepper
type StepperConfig struct {
	// Pins are the board pins of the coils, in left-to-right hardware order
	Pins               []int    `json:"pins"`
	StepsPerRevolution int      `json:"steps_per_revolution"`
	StepMode           StepMode `json:"step_mode"`
	// Sequence overrides StepMode with CoilCount custom coil patterns, one bit per pin
	Sequence []string `json:"sequence,omitempty"`
}

// DefaultStepperConfig is a 28BYJ-48 on pins 8-11 driven in full steps
func DefaultStepperConfig() StepperConfig {
	return StepperConfig{
		Pins:               []int{8, 9, 10, 11},
		StepsPerRevolution: 2048,
		StepMode:           StepModeFull,
	}
}

// patterns validates the configuration and returns the coil levels for each phase of a step
func (cfg StepperConfig) patterns() ([][]board.Level, error) {
	if len(cfg.Pins) != CoilCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPinCount, len(cfg.Pins), CoilCount)
	}

	sequence := cfg.Sequence
	if len(sequence) == 0 {
		var err error
		sequence, err = cfg.StepMode.Sequence()
		if err != nil {
			return nil, err
		}
	}
	if len(sequence) != CoilCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSequenceLength, len(sequence), CoilCount)
	}

	result := make([][]board.Level, len(sequence))
	for i, pattern := range sequence {
		if len(pattern) != len(cfg.Pins) {
			return nil, fmt.Errorf("%w: pattern %q has %d bits for %d pins", ErrPatternWidth, pattern, len(pattern), len(cfg.Pins))
		}

		levels := make([]board.Level, len(pattern))
		for j, c := range pattern {
			if c != '0' && c != '1' {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
			}
			levels[j] = board.LevelOf(c == '1')
		}
		result[i] = levels
	}

	return result, nil
}
