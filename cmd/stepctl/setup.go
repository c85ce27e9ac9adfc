package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/controller"
)

type InitCommand struct {
	Force bool `short:"f" long:"force" description:"Overwrite an existing config file"`
}

func (c *InitCommand) Execute(args []string) error {
	if controller.ConfigExists(opts.Config) && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", opts.Config)
	}

	fmt.Println(headerStyle.Render("stepctl setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	ports, err := board.GetSerialPorts()
	if err != nil && !errors.Is(err, board.ErrNoUSBSerial) {
		return err
	}

	port := board.SerialPortNone
	if opts.Port != "" {
		port = opts.Port
	} else if len(ports) > 0 {
		options := make([]huh.Option[string], 0, len(ports)+1)
		for _, p := range ports {
			options = append(options, huh.NewOption(p, p))
		}
		options = append(options, huh.NewOption("No board (dry run)", board.SerialPortNone))

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Which serial port is the Firmata board on?").
					Options(options...).
					Value(&port),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	} else {
		fmt.Println("No USB serial ports found, the config will use the dry-run board.")
	}

	cfg := controller.DefaultConfig()
	cfg.SerialPort = port
	if opts.Baud > 0 {
		cfg.BaudRate = opts.Baud
	}

	err = cfg.SaveTo(opts.Config)
	if err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println("Edit the stepper pins and steps per revolution there, then try: " + headerStyle.Render("stepctl rotate 90"))

	return nil
}

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := board.GetSerialPorts()
	if errors.Is(err, board.ErrNoUSBSerial) {
		fmt.Println(dimStyle.Render("No USB serial ports found."))
		return nil
	}
	if err != nil {
		return err
	}

	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
