package stepctl

// LineEnding terminates every reply line of the firmware serial protocol
const LineEnding = "\r\n"

// Direction is the direction a stepper is commanded to turn
type Direction int

const (
	DirectionNone Direction = iota
	DirectionClockwise
	DirectionCounterClockwise
)

// DirectionOf returns the direction implied by the sign of v. Positive values are clockwise
func DirectionOf(v float64) Direction {
	switch {
	case v > 0:
		return DirectionClockwise
	case v < 0:
		return DirectionCounterClockwise
	default:
		return DirectionNone
	}
}

// Clockwise converts a bool as used by step primitives into a Direction
func Clockwise(cw bool) Direction {
	if cw {
		return DirectionClockwise
	}
	return DirectionCounterClockwise
}

func (d Direction) String() string {
	switch d {
	case DirectionClockwise:
		return "CW"
	case DirectionCounterClockwise:
		return "CCW"
	default:
		fallthrough
	case DirectionNone:
		return "None"
	}
}

// Sign returns +1 for clockwise, -1 for counter-clockwise and 0 otherwise
func (d Direction) Sign() int {
	switch d {
	case DirectionClockwise:
		return +1
	case DirectionCounterClockwise:
		return -1
	default:
		return 0
	}
}

// Logger is the leveled, structured logger used by the motion packages. *log.Logger from
// github.com/charmbracelet/log satisfies it
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// Discard is a Logger that drops every message
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(interface{}, ...interface{}) {}
func (discard) Info(interface{}, ...interface{})  {}
func (discard) Warn(interface{}, ...interface{})  {}
