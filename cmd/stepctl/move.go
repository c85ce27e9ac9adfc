package main

import (
	"context"
	"os"
	"os/signal"
	"time"
)

type RotateCommand struct {
	RPM      float64       `short:"s" long:"rpm" description:"Speed in RPM, defaults to default_rpm from the config"`
	Duration time.Duration `short:"d" long:"duration" description:"Take this long for the move instead of using a speed"`
	Args     struct {
		Degrees float64 `positional-arg-name:"DEGREES" required:"yes"`
	} `positional-args:"yes"`
}

func (c *RotateCommand) Execute(args []string) error {
	ctl, cfg, err := openController(newLogger())
	if err != nil {
		return err
	}
	defer ctl.Close()

	s := ctl.Stepper()
	if c.Duration > 0 {
		err = s.RotateFor(c.Args.Degrees, c.Duration)
	} else {
		err = s.Rotate(c.Args.Degrees, speed(c.RPM, cfg.DefaultRPM))
	}
	if err != nil {
		return err
	}

	printPosition(ctl)
	reportDryRun(ctl)
	return nil
}

// GoToCommand moves to an angle measured from where the motor was when the command started, since the
// position is not kept between runs
type GoToCommand struct {
	From     float64       `long:"from" default:"0" description:"Current angle of the motor in degrees"`
	RPM      float64       `short:"s" long:"rpm" description:"Speed in RPM, defaults to default_rpm from the config"`
	Duration time.Duration `short:"d" long:"duration" description:"Take this long for the move instead of using a speed"`
	Args     struct {
		Degrees float64 `positional-arg-name:"DEGREES" required:"yes"`
	} `positional-args:"yes"`
}

func (c *GoToCommand) Execute(args []string) error {
	ctl, cfg, err := openController(newLogger())
	if err != nil {
		return err
	}
	defer ctl.Close()

	target := c.Args.Degrees - c.From
	s := ctl.Stepper()
	if c.Duration > 0 {
		err = s.RotateToFor(target, c.Duration)
	} else {
		err = s.RotateTo(target, speed(c.RPM, cfg.DefaultRPM))
	}
	if err != nil {
		return err
	}

	printPosition(ctl)
	reportDryRun(ctl)
	return nil
}

type RevolveCommand struct {
	RPM  float64 `short:"s" long:"rpm" description:"Speed in RPM, defaults to default_rpm from the config"`
	Args struct {
		Revolutions float64 `positional-arg-name:"REVOLUTIONS" required:"yes"`
	} `positional-args:"yes"`
}

func (c *RevolveCommand) Execute(args []string) error {
	ctl, cfg, err := openController(newLogger())
	if err != nil {
		return err
	}
	defer ctl.Close()

	err = ctl.Stepper().RotateRevolutions(c.Args.Revolutions, speed(c.RPM, cfg.DefaultRPM))
	if err != nil {
		return err
	}

	printPosition(ctl)
	reportDryRun(ctl)
	return nil
}

type ShellCommand struct{}

func (c *ShellCommand) Execute(args []string) error {
	ctl, _, err := openController(newLogger())
	if err != nil {
		return err
	}
	defer ctl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = ctl.Run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	printPosition(ctl)
	reportDryRun(ctl)
	return nil
}

func speed(rpm, fallback float64) float64 {
	if rpm > 0 {
		return rpm
	}
	return fallback
}
