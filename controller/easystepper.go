//go:build tinygo

package controller

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers/easystepper"

	"github.com/calvinmclean/stepctl/clock"
)

// NewEasyDriver creates and configures the easystepper device. Steps are paced on source; nil uses the system clock
func NewEasyDriver(cfg easystepper.DeviceConfig, source clock.Source) (*EasyDriver, error) {
	device, err := easystepper.New(cfg)
	if err != nil {
		return nil, errors.New("error creating easystepper: " + err.Error())
	}
	device.Configure()
	if source == nil {
		source = clock.System{}
	}
	return &EasyDriver{device: device, source: source}, nil
}

// EasyStepper is a Stepper driven by an EasyDriver
type EasyStepper struct {
	*Stepper
	driver *EasyDriver
}

// NewEasyStepper creates the easystepper device and the Stepper around it. The step count comes from cfg
func NewEasyStepper(cfg easystepper.DeviceConfig, opts ...Option) (*EasyStepper, error) {
	s, err := NewStepper(nil, int(cfg.StepCount), opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating stepper: %w", err)
	}

	driver, err := NewEasyDriver(cfg, s.clock.Source())
	if err != nil {
		return nil, err
	}
	driver.poll = s.clock.PollInterval()
	s.driver = driver

	return &EasyStepper{Stepper: s, driver: driver}, nil
}

// Off de-energizes the coils. The position is kept
func (s *EasyStepper) Off() error {
	return s.driver.Off()
}
