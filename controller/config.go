//go:build !tinygo

package controller

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/calibrate"
)

const DefaultConfigFile = "stepctl.json"

// Config holds everything needed to reach and drive one motor
type Config struct {
	SerialPort string `json:"serial_port"`
	BaudRate   int    `json:"baud_rate"`
	// PollInterval is the longest sleep while waiting for the next coil phase
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	// DefaultRPM is used by moves that do not specify a speed
	DefaultRPM  float64          `json:"default_rpm"`
	Stepper     StepperConfig    `json:"stepper"`
	Calibration calibrate.Config `json:"calibration"`
}

// DefaultConfig has no serial port selected, so it drives the dry-run board
func DefaultConfig() Config {
	return Config{
		SerialPort:  board.SerialPortNone,
		BaudRate:    board.DefaultBaudRate,
		DefaultRPM:  10,
		Stepper:     DefaultStepperConfig(),
		Calibration: calibrate.DefaultConfig(),
	}
}

// LoadConfigFrom reads a JSON config. Fields missing from the file keep their DefaultConfig values
func LoadConfigFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config JSON: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the config as indented JSON
func (c Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if a file exists at path
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
