package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/controller"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type Options struct {
	Config  string `short:"c" long:"config" env:"STEPCTL_CONFIG" default:"stepctl.json" description:"Config file"`
	Port    string `short:"p" long:"port" env:"STEPCTL_PORT" description:"Serial port of the Firmata board, overrides the config file"`
	Baud    int    `long:"baud" env:"STEPCTL_BAUD" description:"Baud rate, overrides the config file"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every step"`
	DryRun  bool   `long:"dry-run" description:"Record pin writes in memory instead of opening the serial port"`

	Init      InitCommand      `command:"init" description:"Pick a serial port and write a config file"`
	Ports     PortsCommand     `command:"ports" description:"List USB serial ports"`
	Rotate    RotateCommand    `command:"rotate" description:"Rotate by a relative angle in degrees (use -- before negative angles)"`
	GoTo      GoToCommand      `command:"goto" description:"Rotate to an absolute angle in degrees"`
	Revolve   RevolveCommand   `command:"revolve" alias:"rev" description:"Turn by revolutions on a fixed step cadence"`
	Shell     ShellCommand     `command:"shell" description:"Read move commands from stdin"`
	Calibrate CalibrateCommand `command:"calibrate" description:"Find the maximum reliable speed"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)

func main() {
	parser.LongDescription = "stepctl - open-loop control of 4-wire stepper motors over Firmata"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stepctl",
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadConfig reads the config file if it exists and applies the command line overrides
func loadConfig() (controller.Config, error) {
	cfg := controller.DefaultConfig()
	if controller.ConfigExists(opts.Config) {
		var err error
		cfg, err = controller.LoadConfigFrom(opts.Config)
		if err != nil {
			return controller.Config{}, err
		}
	}

	if opts.Port != "" {
		cfg.SerialPort = opts.Port
	}
	if opts.Baud > 0 {
		cfg.BaudRate = opts.Baud
	}
	if opts.DryRun {
		cfg.SerialPort = board.SerialPortNone
	}

	return cfg, nil
}

// openController loads the config and connects to the board
func openController(logger *log.Logger) (*controller.Controller, controller.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, controller.Config{}, err
	}

	logger.Debug("opening board", "port", cfg.SerialPort, "baud", cfg.BaudRate, "pins", cfg.Stepper.Pins)
	c, err := controller.Open(cfg, controller.WithLogger(logger))
	if err != nil {
		return nil, controller.Config{}, err
	}

	return c, cfg, nil
}

// reportDryRun prints how many pin writes a dry run recorded
func reportDryRun(c *controller.Controller) {
	rec, ok := c.Board().(*board.Recorder)
	if !ok {
		return
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("dry run: %d pin writes recorded", len(rec.Writes()))))
}

func printPosition(c *controller.Controller) {
	s := c.Stepper()
	fmt.Printf("%s %d steps, %.2f°, %.4f rev\n", headerStyle.Render("Position:"), s.Position(), s.PositionDegrees(), s.Revolutions())
}
