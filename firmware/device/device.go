package device

import (
	"strconv"
	"time"

	"github.com/calvinmclean/stepctl"
	"github.com/calvinmclean/stepctl/calibrate"
	"github.com/calvinmclean/stepctl/clock"
)

// Motor is the part of a stepper the Device needs. Both controller.CoilStepper and
// controller.EasyStepper implement it
type Motor interface {
	calibrate.Rotator
	RotateTo(positionDegrees, rpm float64) error
	Step(clockwise bool, d time.Duration) error
	Position() int
	PositionDegrees() float64
	StepsPerRevolution() int
	Clock() *clock.Clock
	Off() error
}

// Serial is the command connection
type Serial interface {
	ReadByte() (byte, error)
	Write([]byte) (int, error)
}

// Device runs motor commands received over serial and replies with one line per command
type Device struct {
	motor       Motor
	serial      Serial
	calibration calibrate.Config

	rpm     float64
	verbose bool

	// clock measures the time since startup for reply timestamps
	clock *clock.Clock
}

// New creates a Device. The timestamp clock shares the motor's time source
func New(motor Motor, serial Serial, cfg Config) *Device {
	if cfg.RPM <= 0 {
		cfg.RPM = DefaultConfig().RPM
	}

	return &Device{
		motor:       motor,
		serial:      serial,
		calibration: cfg.Calibration,
		rpm:         cfg.RPM,
		clock:       clock.NewWithSource(motor.Clock().Source(), 0),
	}
}

// Rotate turns by a relative angle in degrees
func (d *Device) Rotate(degrees int) {
	if d.verbose {
		d.Println(d.ts() + " Rotate " + strconv.Itoa(degrees))
	}
	d.reply(d.motor.Rotate(float64(degrees), d.rpm))
}

// GoTo turns to an absolute angle in degrees
func (d *Device) GoTo(degrees int) {
	if d.verbose {
		d.Println(d.ts() + " GoTo " + strconv.Itoa(degrees))
	}
	d.reply(d.motor.RotateTo(float64(degrees), d.rpm))
}

// SetSpeed changes the speed of following moves
func (d *Device) SetSpeed(rpm uint) {
	if rpm == 0 {
		return
	}
	d.rpm = float64(rpm)
	d.Println(d.ts() + " rpm=" + formatRPM(d.rpm))
}

// Step runs single steps at the current speed. Positive n is clockwise
func (d *Device) Step(n int32) {
	if d.verbose {
		d.Println(d.ts() + " Step " + strconv.Itoa(int(n)))
	}

	dir := stepctl.DirectionOf(float64(n))
	stepDuration := time.Duration(float64(time.Minute) / (d.rpm * float64(d.motor.StepsPerRevolution())))

	count := int(n) * dir.Sign()
	for range count {
		err := d.motor.Step(dir == stepctl.DirectionClockwise, stepDuration)
		if err != nil {
			d.reply(err)
			return
		}
	}
	d.reply(nil)
}

// Revolution turns one full revolution clockwise
func (d *Device) Revolution() {
	if d.verbose {
		d.Println(d.ts() + " Revolution")
	}
	d.reply(d.motor.Rotate(360, d.rpm))
}

// Off de-energizes the coils. The position is kept
func (d *Device) Off() {
	err := d.motor.Off()
	if err != nil {
		d.Println(d.ts() + " error: " + err.Error())
		return
	}
	d.Println(d.ts() + " off")
}

// Calibrate searches for the maximum reliable speed with the configured parameters
func (d *Device) Calibrate() {
	d.Println(d.ts() + " calibrating from " + formatRPM(d.calibration.BaseSpeed) + " rpm")

	result, err := calibrate.MaxSpeed(d.motor, d.calibration, calibrate.WithSource(d.motor.Clock().Source()))
	if err != nil {
		d.Println(d.ts() + " error: " + err.Error())
		return
	}

	line := d.ts() + " max_speed=" + formatRPM(result.MaxSpeed) + " trials=" + strconv.Itoa(len(result.Trials))
	if result.Capped {
		line += " capped"
	}
	d.Println(line)
}

// Debug prints the position and settings
func (d *Device) Debug() {
	d.Println(d.ts() + " " + d.position() + " rpm=" + formatRPM(d.rpm) + " verbose=" + strconv.FormatBool(d.verbose))
}

// Verbose sets the Device to Verbose mode and echoes every move before running it
func (d *Device) Verbose() {
	d.verbose = true
	d.Println(d.ts() + " Set Verbose Mode")
}

// ReadByte reads the next command byte
func (d *Device) ReadByte() (byte, error) {
	return d.serial.ReadByte()
}

// Println writes s followed by CRLF
func (d *Device) Println(s string) {
	_, _ = d.serial.Write([]byte(s + stepctl.LineEnding))
}

// reply reports the outcome of a move with the new position
func (d *Device) reply(err error) {
	if err != nil {
		d.Println(d.ts() + " error: " + err.Error() + " " + d.position())
		return
	}
	d.Println(d.ts() + " " + d.position())
}

func (d *Device) position() string {
	return "pos=" + strconv.Itoa(d.motor.Position()) + " deg=" + strconv.FormatFloat(d.motor.PositionDegrees(), 'f', 1, 64)
}

// ts returns the time since startup for logging
func (d *Device) ts() string {
	return "[" + d.clock.Time().Round(time.Millisecond).String() + "]"
}

func formatRPM(rpm float64) string {
	return strconv.FormatFloat(rpm, 'g', -1, 64)
}
