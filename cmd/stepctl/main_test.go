package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/calibrate"
	"github.com/calvinmclean/stepctl/controller"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepctl.json")
	saved := controller.DefaultConfig()
	saved.SerialPort = "/dev/ttyUSB0"
	saved.DefaultRPM = 12
	require.NoError(t, saved.SaveTo(path))

	tests := []struct {
		name         string
		opts         Options
		expectedPort string
		expectedBaud int
	}{
		{"MissingFileUsesDefaults", Options{Config: filepath.Join(t.TempDir(), "missing.json")}, board.SerialPortNone, board.DefaultBaudRate},
		{"FromFile", Options{Config: path}, "/dev/ttyUSB0", board.DefaultBaudRate},
		{"FlagOverrides", Options{Config: path, Port: "COM4", Baud: 115200}, "COM4", 115200},
		{"DryRunWins", Options{Config: path, Port: "COM4", DryRun: true}, board.SerialPortNone, board.DefaultBaudRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts = tt.opts
			t.Cleanup(func() { opts = Options{} })

			cfg, err := loadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPort, cfg.SerialPort)
			assert.Equal(t, tt.expectedBaud, cfg.BaudRate)
		})
	}
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, 20.0, speed(20, 10))
	assert.Equal(t, 10.0, speed(0, 10))
}

func TestTrialTable(t *testing.T) {
	out := trialTable(calibrate.Result{
		Margin: calibrate.DefaultMargin,
		Trials: []calibrate.Trial{
			{Speed: 5, Elapsed: 6 * time.Second, Expected: 6 * time.Second},
			{Speed: 6, Elapsed: 5200 * time.Millisecond, Expected: 5 * time.Second, Diff: 200 * time.Millisecond},
		},
	})

	assert.Contains(t, out, "RPM")
	assert.Contains(t, out, "5.2s")
	assert.Contains(t, out, "200ms")
}
