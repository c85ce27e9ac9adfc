//go:build tinygo

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/easystepper"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/controller"
	"github.com/calvinmclean/stepctl/firmware/commands"
	"github.com/calvinmclean/stepctl/firmware/device"
)

// driver selects the step primitive. Build with -ldflags="-X main.driver=easystepper" to let the
// easystepper driver sequence the coils instead of the CoilDriver
var driver = "coil"

func main() {
	stepperCfg := device.DefaultStepperConfig()
	pins := [4]machine.Pin{machine.GP16, machine.GP17, machine.GP18, machine.GP19}

	var (
		motor device.Motor
		err   error
	)
	switch driver {
	case "easystepper":
		motor, err = controller.NewEasyStepper(easystepper.DeviceConfig{
			Pin1:      pins[0],
			Pin2:      pins[1],
			Pin3:      pins[2],
			Pin4:      pins[3],
			StepCount: uint(stepperCfg.StepsPerRevolution),
			RPM:       15,
			Mode:      easystepper.ModeFour,
		})
	default:
		motor, err = controller.NewCoilStepper(board.NewMachine(pins[:]...), stepperCfg)
	}
	if err != nil {
		panic(err)
	}

	d := device.New(motor, serialPort{machine.Serial}, device.DefaultConfig())
	d.Println("ready")

	commands.Run(d)
}

// serialPort blocks in ReadByte until a byte is buffered
type serialPort struct {
	machine.Serialer
}

func (s serialPort) ReadByte() (byte, error) {
	for s.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}
	return s.Serialer.ReadByte()
}
