package commands

import (
	"errors"
	"io"
)

var errInvalidInput = errors.New("invalid input")

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Rotate(int)
	GoTo(int)
	SetSpeed(uint)
	Step(int32)
	Revolution()
	Off()
	Calibrate()
	Debug()
	Verbose()

	// I/O
	ReadByte() (byte, error)
	Println(string)
}

var (
	RotateCommand = &Command{
		Flag:      'r',
		InputSize: 4,
		Run: func(c Controller, input []byte) error {
			degrees, err := signedInt(input)
			if err != nil {
				return err
			}
			c.Rotate(degrees)
			return nil
		},
		Description: "Rotate by a relative angle. Input: '+' or '-', then 3 digit degrees (r+090).",
	}
	GoToCommand = &Command{
		Flag:      'g',
		InputSize: 4,
		Run: func(c Controller, input []byte) error {
			degrees, err := signedInt(input)
			if err != nil {
				return err
			}
			c.GoTo(degrees)
			return nil
		},
		Description: "Rotate to an absolute angle. Input: '+' or '-', then 3 digit degrees (g-045).",
	}
	SetSpeedCommand = &Command{
		Flag:      'S',
		InputSize: 3,
		Run: func(c Controller, input []byte) error {
			rpm, err := digits(input)
			if err != nil {
				return err
			}
			if rpm == 0 {
				return errors.New("invalid input: speed must be positive")
			}
			c.SetSpeed(uint(rpm))
			return nil
		},
		Description: "Set the speed in RPM. Input: 3 digits (S015).",
	}
	StepCommand = &Command{
		Flag:      's',
		InputSize: 2,
		Run: func(c Controller, b []byte) error {
			s := int32(1)
			if b[0] == '-' {
				s = -1
			} else if b[0] != '+' {
				return errors.New("invalid input: " + string(b))
			}

			v := b2i(b[1])
			if v == 0 {
				return errors.New("invalid input: " + string(b))
			}

			c.Step(int32(v) * s)

			return nil
		},
		Description: "Move stepper motor by steps. Input: '+' or '-', then step count (1-9).",
	}
	FullRevolutionCommand = &Command{
		Flag:      'R',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Revolution()
			return nil
		},
		Description: "Move stepper motor a full revolution.",
	}
	OffCommand = &Command{
		Flag:      'O',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Off()
			return nil
		},
		Description: "Turn off the coils. The position is kept.",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	CalibrateCommand = &Command{
		Flag:      'Z',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Calibrate()
			return nil
		},
		Description: "Find the maximum speed that keeps the expected timing.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			c.Println("Available Commands:")
			for _, cmd := range commands {
				c.Println(string(cmd.Flag) + ": " + cmd.Description)
			}
			return nil
		},
	}
)

// b2i converts a single digit. Anything else is 0
func b2i(b byte) uint {
	if b < '0' || b > '9' {
		return 0
	}
	return uint(b - '0')
}

// digits parses an unsigned decimal number where every byte must be a digit
func digits(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, errInvalidInput
	}

	v := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errors.New("invalid input: " + string(b))
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}

// signedInt parses a sign byte followed by digits, like +090
func signedInt(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, errInvalidInput
	}

	v, err := digits(b[1:])
	if err != nil {
		return 0, errors.New("invalid input: " + string(b))
	}

	switch b[0] {
	case '+':
		return v, nil
	case '-':
		return -v, nil
	default:
		return 0, errors.New("invalid input: " + string(b))
	}
}

var commands = []*Command{
	RotateCommand,
	GoToCommand,
	SetSpeedCommand,
	StepCommand,
	FullRevolutionCommand,
	OffCommand,
	DebugCommand,
	VerboseCommand,
	CalibrateCommand,
}

// Run reads commands until the connection returns io.EOF. Other read errors are skipped since a
// serial port reports an error while no data is buffered
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		in := make([]byte, cmd.InputSize)
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		err = cmd.Run(c, in)
		if err != nil {
			c.Println("error: " + err.Error())
		}
	}
}
