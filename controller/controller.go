//go:build !tinygo

package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/stepctl"
	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/calibrate"
)

var ErrUsage = errors.New("usage")

// Controller owns one board connection and the stepper wired to it
type Controller struct {
	stepper *CoilStepper
	board   board.Board
	cfg     Config
	logger  stepctl.Logger
}

// New creates a Controller on an already opened board
func New(b board.Board, cfg Config, opts ...Option) (*Controller, error) {
	opts = append([]Option{WithPollInterval(cfg.PollInterval)}, opts...)
	stepper, err := NewCoilStepper(b, cfg.Stepper, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.DefaultRPM <= 0 {
		cfg.DefaultRPM = DefaultConfig().DefaultRPM
	}

	return &Controller{
		stepper: stepper,
		board:   b,
		cfg:     cfg,
		logger:  stepper.logger,
	}, nil
}

// Open connects to the board named by cfg.SerialPort and configures the coil pins. SerialPortNone
// uses an in-memory board so moves can be tried without hardware
func Open(cfg Config, opts ...Option) (*Controller, error) {
	var b board.Board
	switch cfg.SerialPort {
	case "", board.SerialPortNone:
		b = board.NewRecorder(0)
	default:
		f, err := board.OpenFirmata(board.FirmataConfig{
			SerialPort: cfg.SerialPort,
			BaudRate:   cfg.BaudRate,
		})
		if err != nil {
			return nil, err
		}
		err = f.Configure(cfg.Stepper.Pins...)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("configure pins: %w", err)
		}
		b = f
	}

	c, err := New(b, cfg, opts...)
	if err != nil {
		if closer, ok := b.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return c, nil
}

// Stepper returns the motor driven by the Controller
func (c *Controller) Stepper() *CoilStepper {
	return c.stepper
}

// Board returns the board the Controller writes to
func (c *Controller) Board() board.Board {
	return c.board
}

// Calibrate runs a max speed search with the configured calibration parameters
func (c *Controller) Calibrate(opts ...calibrate.Option) (calibrate.Result, error) {
	opts = append([]calibrate.Option{
		calibrate.WithSource(c.stepper.clock.Source()),
		calibrate.WithLogger(c.logger),
	}, opts...)
	return calibrate.MaxSpeed(c.stepper, c.cfg.Calibration, opts...)
}

// Close de-energizes the coils and closes the board connection if it has one
func (c *Controller) Close() error {
	err := c.stepper.Off()
	if closer, ok := c.board.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

type consoleCommand struct {
	usage       string
	description string
	run         func(c *Controller, args []string, w io.Writer) error
}

var consoleCommands = map[string]consoleCommand{
	"rotate": {
		usage:       "rotate DEGREES [RPM]",
		description: "rotate by a relative angle, positive is clockwise",
		run: func(c *Controller, args []string, _ io.Writer) error {
			degrees, rpm, err := c.angleAndSpeed(args)
			if err != nil {
				return err
			}
			return c.stepper.Rotate(degrees, rpm)
		},
	},
	"rotate-for": {
		usage:       "rotate-for DEGREES DURATION",
		description: "rotate by a relative angle over a duration like 1.5s",
		run: func(c *Controller, args []string, _ io.Writer) error {
			degrees, d, err := angleAndDuration(args)
			if err != nil {
				return err
			}
			return c.stepper.RotateFor(degrees, d)
		},
	},
	"goto": {
		usage:       "goto DEGREES [RPM]",
		description: "rotate to an absolute angle",
		run: func(c *Controller, args []string, _ io.Writer) error {
			degrees, rpm, err := c.angleAndSpeed(args)
			if err != nil {
				return err
			}
			return c.stepper.RotateTo(degrees, rpm)
		},
	},
	"goto-for": {
		usage:       "goto-for DEGREES DURATION",
		description: "rotate to an absolute angle over a duration",
		run: func(c *Controller, args []string, _ io.Writer) error {
			degrees, d, err := angleAndDuration(args)
			if err != nil {
				return err
			}
			return c.stepper.RotateToFor(degrees, d)
		},
	},
	"rev": {
		usage:       "rev REVOLUTIONS [RPM]",
		description: "turn by revolutions on a fixed step cadence",
		run: func(c *Controller, args []string, _ io.Writer) error {
			revolutions, rpm, err := c.angleAndSpeed(args)
			if err != nil {
				return err
			}
			return c.stepper.RotateRevolutions(revolutions, rpm)
		},
	},
	"rev-to": {
		usage:       "rev-to REVOLUTIONS [RPM]",
		description: "turn to an absolute position in revolutions",
		run: func(c *Controller, args []string, _ io.Writer) error {
			revolutions, rpm, err := c.angleAndSpeed(args)
			if err != nil {
				return err
			}
			return c.stepper.RotateToRevolutions(revolutions, rpm)
		},
	},
	"steps": {
		usage:       "steps COUNT DURATION",
		description: "run a signed number of steps over a duration",
		run: func(c *Controller, args []string, _ io.Writer) error {
			if len(args) != 2 {
				return ErrUsage
			}
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			d, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q", args[1])
			}
			clockwise := count > 0
			if count < 0 {
				count = -count
			}
			return c.stepper.Steps(clockwise, count, d)
		},
	},
	"pos": {
		usage:       "pos",
		description: "print the commanded position",
		run: func(c *Controller, _ []string, w io.Writer) error {
			_, err := fmt.Fprintf(w, "position=%d degrees=%.2f revolutions=%.4f\n",
				c.stepper.Position(), c.stepper.PositionDegrees(), c.stepper.Revolutions())
			return err
		},
	},
	"off": {
		usage:       "off",
		description: "de-energize the coils",
		run: func(c *Controller, _ []string, _ io.Writer) error {
			return c.stepper.Off()
		},
	},
	"calibrate": {
		usage:       "calibrate",
		description: "search for the maximum reliable speed",
		run: func(c *Controller, _ []string, w io.Writer) error {
			result, err := c.Calibrate()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "max_speed=%g trials=%d capped=%t\n", result.MaxSpeed, len(result.Trials), result.Capped)
			return err
		},
	},
}

// Run reads one command per line from r until EOF, "quit", or ctx is done. Each move blocks until it is
// complete; ctx is only checked between commands. Command errors are written to w and do not stop Run
func (c *Controller) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		name, args := strings.ToLower(fields[0]), fields[1:]
		switch name {
		case "quit", "exit":
			return nil
		case "help":
			c.help(w)
			continue
		}

		cmd, ok := consoleCommands[name]
		if !ok {
			fmt.Fprintf(w, "error: unknown command %q\n", name)
			continue
		}

		c.logger.Debug("command", "name", name, "args", args)
		err := cmd.run(c, args, w)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(w, "usage: %s\n", cmd.usage)
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (c *Controller) help(w io.Writer) {
	fmt.Fprintln(w, "Available Commands:")
	for _, name := range []string{"rotate", "rotate-for", "goto", "goto-for", "rev", "rev-to", "steps", "pos", "off", "calibrate"} {
		cmd := consoleCommands[name]
		fmt.Fprintf(w, "  %-28s %s\n", cmd.usage, cmd.description)
	}
	fmt.Fprintf(w, "  %-28s %s\n", "quit", "stop reading commands")
}

// angleAndSpeed parses "VALUE [RPM]" and falls back to the configured default speed
func (c *Controller) angleAndSpeed(args []string) (float64, float64, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, 0, ErrUsage
	}

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", args[0])
	}

	rpm := c.cfg.DefaultRPM
	if len(args) == 2 {
		rpm, err = strconv.ParseFloat(args[1], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid speed %q", args[1])
		}
	}

	return value, rpm, nil
}

func angleAndDuration(args []string) (float64, time.Duration, error) {
	if len(args) != 2 {
		return 0, 0, ErrUsage
	}

	degrees, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", args[0])
	}
	d, err := time.ParseDuration(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid duration %q", args[1])
	}

	return degrees, d, nil
}
