//go:build !tinygo

package board

import (
	"fmt"

	"go.bug.st/serial"
	"gobot.io/x/gobot/v2/platforms/firmata/client"
)

const DefaultBaudRate = 57600

// FirmataConfig has the values needed to reach a board running StandardFirmata
type FirmataConfig struct {
	SerialPort string
	BaudRate   int
}

// Firmata is a Board reached over a serial port running the Firmata protocol
type Firmata struct {
	port   serial.Port
	client *client.Client
}

var _ Board = (*Firmata)(nil)

// OpenFirmata opens the serial port and completes the Firmata handshake
func OpenFirmata(cfg FirmataConfig) (*Firmata, error) {
	if cfg.SerialPort == "" {
		return nil, fmt.Errorf("open firmata: missing serial port")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", cfg.SerialPort, err)
	}

	c := client.New()
	err = c.Connect(port)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("connect firmata on %q: %w", cfg.SerialPort, err)
	}

	return &Firmata{port: port, client: c}, nil
}

// Configure sets every pin to digital output
func (f *Firmata) Configure(pins ...int) error {
	for _, pin := range pins {
		err := f.checkPin(pin)
		if err != nil {
			return err
		}
		err = f.client.SetPinMode(pin, client.Output)
		if err != nil {
			return fmt.Errorf("set pin %d to output: %w", pin, err)
		}
	}
	return nil
}

// WriteDigital sets a digital output pin
func (f *Firmata) WriteDigital(pin int, value Level) error {
	err := f.checkPin(pin)
	if err != nil {
		return err
	}

	err = f.client.DigitalWrite(pin, int(value))
	if err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Close ends the Firmata session and releases the serial port
func (f *Firmata) Close() error {
	err := f.client.Disconnect()
	// the client may already have closed the port
	_ = f.port.Close()
	if err != nil {
		return fmt.Errorf("disconnect firmata: %w", err)
	}
	return nil
}

func (f *Firmata) checkPin(pin int) error {
	if !f.client.Connected() {
		return ErrNotConnected
	}
	pins := len(f.client.Pins())
	if pin < 0 || pin >= pins {
		return PinError{Pin: pin, Pins: pins}
	}
	return nil
}
