//go:build tinygo

package board

import (
	"machine"
)

// Machine is a Board using the microcontroller's own pins. Only pins passed to NewMachine are writable
type Machine struct {
	pins map[int]machine.Pin
}

var _ Board = (*Machine)(nil)

// NewMachine configures the pins as outputs
func NewMachine(pins ...machine.Pin) *Machine {
	m := &Machine{pins: make(map[int]machine.Pin, len(pins))}
	for _, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		m.pins[int(p)] = p
	}
	return m
}

// WriteDigital sets the pin high or low
func (m *Machine) WriteDigital(pin int, value Level) error {
	p, ok := m.pins[pin]
	if !ok {
		return PinError{Pin: pin, Pins: len(m.pins)}
	}
	p.Set(value == High)
	return nil
}
