// Package board contains the digital output boundary used by steppers. A Board only has to set a
// pin high or low; everything else about motion lives in the controller package.
package board

import (
	"errors"
	"fmt"
)

// Level is the value written to a digital pin
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// LevelOf converts a bool into a Level
func LevelOf(b bool) Level {
	if b {
		return High
	}
	return Low
}

func (l Level) String() string {
	if l == Low {
		return "0"
	}
	return "1"
}

var (
	ErrNotConnected = errors.New("board is not connected")
	ErrInvalidPin   = errors.New("invalid digital pin")
)

// Board sets digital output pins. Implementations return an error for pins outside of the board's
// range or when the connection is not open. A Board is used by a single Stepper at a time
type Board interface {
	WriteDigital(pin int, value Level) error
}

// PinError reports a write to a pin the board does not have
type PinError struct {
	Pin  int
	Pins int
}

func (e PinError) Error() string {
	return fmt.Sprintf("%s %d: board has %d pins", ErrInvalidPin, e.Pin, e.Pins)
}

func (e PinError) Unwrap() error {
	return ErrInvalidPin
}
