//go:build !tinygo

package board

import (
	"errors"
	"fmt"

	"go.bug.st/serial/enumerator"
)

// SerialPortNone selects the in-memory Recorder instead of real hardware
const SerialPortNone = "none"

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts returns the names of all USB serial ports
func GetSerialPorts() ([]string, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var ports []string
	for _, d := range details {
		if !d.IsUSB {
			continue
		}
		ports = append(ports, d.Name)
	}

	if len(ports) == 0 {
		return nil, ErrNoUSBSerial
	}

	return ports, nil
}
