package commands

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recorder is a Controller that logs every call
type recorder struct {
	in    *bytes.Reader
	calls []string
	lines []string
}

func newRecorder(input string) *recorder {
	return &recorder{in: bytes.NewReader([]byte(input))}
}

func (r *recorder) Rotate(d int)     { r.calls = append(r.calls, fmt.Sprintf("Rotate(%d)", d)) }
func (r *recorder) GoTo(d int)       { r.calls = append(r.calls, fmt.Sprintf("GoTo(%d)", d)) }
func (r *recorder) SetSpeed(s uint)  { r.calls = append(r.calls, fmt.Sprintf("SetSpeed(%d)", s)) }
func (r *recorder) Step(n int32)     { r.calls = append(r.calls, fmt.Sprintf("Step(%d)", n)) }
func (r *recorder) Revolution()      { r.calls = append(r.calls, "Revolution") }
func (r *recorder) Off()             { r.calls = append(r.calls, "Off") }
func (r *recorder) Calibrate()       { r.calls = append(r.calls, "Calibrate") }
func (r *recorder) Debug()           { r.calls = append(r.calls, "Debug") }
func (r *recorder) Verbose()         { r.calls = append(r.calls, "Verbose") }
func (r *recorder) Println(s string) { r.lines = append(r.lines, s) }

func (r *recorder) ReadByte() (byte, error) {
	return r.in.ReadByte()
}

func TestRun(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		expectedCalls []string
		expectedLines []string
	}{
		{
			"Rotate",
			"r+090r-180",
			[]string{"Rotate(90)", "Rotate(-180)"},
			nil,
		},
		{
			"GoToAndSpeed",
			"S015g-045",
			[]string{"SetSpeed(15)", "GoTo(-45)"},
			nil,
		},
		{
			"StepsAndRevolution",
			"s+5s-9R",
			[]string{"Step(5)", "Step(-9)", "Revolution"},
			nil,
		},
		{
			"NoInputCommands",
			"ODVZ",
			[]string{"Off", "Debug", "Verbose", "Calibrate"},
			nil,
		},
		{
			"UnknownBytesAreSkipped",
			"\r\n x r+001",
			[]string{"Rotate(1)"},
			nil,
		},
		{
			"InvalidInput",
			"r*090s+0S000S1a0",
			nil,
			[]string{
				"error: invalid input: *090",
				"error: invalid input: +0",
				"error: invalid input: speed must be positive",
				"error: invalid input: 1a0",
			},
		},
		{
			"IncompleteInputAtEOF",
			"Dr+09",
			[]string{"Debug"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder(tt.in)
			Run(r)

			assert.Equal(t, tt.expectedCalls, r.calls)
			assert.Equal(t, tt.expectedLines, r.lines)
		})
	}
}

func TestHelp(t *testing.T) {
	r := newRecorder("H")
	Run(r)

	assert.Len(t, r.lines, len(commands)+1)
	assert.Equal(t, "Available Commands:", r.lines[0])
	assert.Contains(t, r.lines, "r: "+RotateCommand.Description)
	assert.Contains(t, r.lines, "Z: "+CalibrateCommand.Description)
}

type flakyReader struct {
	recorder
	failures int
}

func (f *flakyReader) ReadByte() (byte, error) {
	if f.failures > 0 {
		f.failures--
		return 0, io.ErrNoProgress
	}
	return f.recorder.ReadByte()
}

func TestRunSkipsReadErrors(t *testing.T) {
	f := &flakyReader{recorder: *newRecorder("R"), failures: 3}
	Run(f)
	assert.Equal(t, []string{"Revolution"}, f.calls)
}

func TestSignedInt(t *testing.T) {
	tests := []struct {
		in       string
		expected int
		err      bool
	}{
		{"+090", 90, false},
		{"-045", -45, false},
		{"+000", 0, false},
		{"090", 0, true},
		{"+", 0, true},
		{"+9x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := signedInt([]byte(tt.in))
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}
