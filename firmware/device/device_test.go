package device

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/stepctl/board"
	"github.com/calvinmclean/stepctl/calibrate"
	"github.com/calvinmclean/stepctl/clock"
	"github.com/calvinmclean/stepctl/controller"
	"github.com/calvinmclean/stepctl/firmware/commands"
)

type testSerial struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (s *testSerial) ReadByte() (byte, error) {
	return s.in.ReadByte()
}

func (s *testSerial) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func newTestDevice(t *testing.T, input string) (*Device, *testSerial, *board.Recorder) {
	t.Helper()

	stepperCfg := DefaultStepperConfig()
	stepperCfg.StepsPerRevolution = 200

	rec := board.NewRecorder(0)
	motor, err := controller.NewCoilStepper(rec, stepperCfg, controller.WithClockSource(clock.NewFake(time.Time{})))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Calibration.MaxIterations = 2

	serial := &testSerial{in: bytes.NewReader([]byte(input))}
	return New(motor, serial, cfg), serial, rec
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\r\n"), "\r\n")
}

func TestDeviceCommands(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{
			"RotateAndDebug",
			"r+090D",
			[]string{
				"[1.5s] pos=50 deg=90.0",
				"[1.5s] pos=50 deg=90.0 rpm=10 verbose=false",
			},
		},
		{
			"SpeedThenGoTo",
			"S020g-090",
			[]string{
				"[0s] rpm=20",
				"[750ms] pos=-50 deg=-90.0",
			},
		},
		{
			"Steps",
			"s+5s-2",
			[]string{
				"[150ms] pos=5 deg=9.0",
				"[210ms] pos=3 deg=5.4",
			},
		},
		{
			"RevolutionAndOff",
			"RO",
			[]string{
				"[6s] pos=200 deg=360.0",
				"[6s] off",
			},
		},
		{
			"Verbose",
			"Vr-018",
			[]string{
				"[0s] Set Verbose Mode",
				"[0s] Rotate -18",
				"[300ms] pos=-10 deg=-18.0",
			},
		},
		{
			"InvalidInput",
			"S000",
			[]string{"error: invalid input: speed must be positive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, serial, _ := newTestDevice(t, tt.in)
			commands.Run(d)

			assert.Equal(t, tt.expected, lines(serial.out.String()))
		})
	}
}

func TestDeviceOffWritesLow(t *testing.T) {
	d, _, rec := newTestDevice(t, "r+090O")
	commands.Run(d)

	patterns := rec.Patterns(DefaultStepperConfig().Pins)
	assert.Equal(t, "0000", patterns[len(patterns)-1])
}

func TestDeviceCalibrate(t *testing.T) {
	d, serial, _ := newTestDevice(t, "Z")
	commands.Run(d)

	out := lines(serial.out.String())
	require.Len(t, out, 2)
	assert.Equal(t, "[0s] calibrating from 5 rpm", out[0])
	assert.True(t, strings.HasSuffix(out[1], " max_speed=6 trials=2 capped"), out[1])
}

// failingMotor is a Motor that cannot turn off its coils
type failingMotor struct {
	*controller.Stepper
	err error
}

func (m *failingMotor) Off() error {
	return m.err
}

// failingDriver fails every step after the first
type failingDriver struct {
	calls int
	err   error
}

func (d *failingDriver) Step(bool, time.Duration) error {
	d.calls++
	if d.calls > 1 {
		return d.err
	}
	return nil
}

func TestDeviceErrors(t *testing.T) {
	boom := errors.New("boom")
	s, err := controller.NewStepper(&failingDriver{err: boom}, 200, controller.WithClockSource(clock.NewFake(time.Time{})))
	require.NoError(t, err)

	serial := &testSerial{in: bytes.NewReader([]byte("s+5O"))}
	d := New(&failingMotor{Stepper: s, err: boom}, serial, Config{Calibration: calibrate.DefaultConfig()})
	commands.Run(d)

	assert.Equal(t, []string{
		"[0s] error: boom pos=2 deg=3.6",
		"[0s] error: boom",
	}, lines(serial.out.String()))
}
