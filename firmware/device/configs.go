package device

import (
	"github.com/calvinmclean/stepctl/calibrate"
	"github.com/calvinmclean/stepctl/controller"
)

// Config has the initial runtime settings of the Device
type Config struct {
	// RPM is the speed of moves until it is changed over serial
	RPM         float64
	Calibration calibrate.Config
}

// DefaultConfig moves at 10 RPM
func DefaultConfig() Config {
	return Config{
		RPM:         10,
		Calibration: calibrate.DefaultConfig(),
	}
}

// DefaultStepperConfig is a 28BYJ-48 through a ULN2003 board on GP16-GP19 of a Raspberry Pi Pico
func DefaultStepperConfig() controller.StepperConfig {
	return controller.StepperConfig{
		Pins:               []int{16, 17, 18, 19},
		StepsPerRevolution: 2048,
		StepMode:           controller.StepModeFull,
	}
}
