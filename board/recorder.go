package board

// Write is a single recorded pin write
type Write struct {
	Pin   int
	Value Level
}

// Recorder is an in-memory Board. It keeps every write in order, which is what dry runs and tests
// need to check the pulse train
type Recorder struct {
	// Pins limits the valid pin range to [0, Pins). Zero accepts any non-negative pin
	Pins int
	// OnWrite runs before a write is recorded. A non-nil error fails the write and nothing is recorded
	OnWrite func(pin int, value Level) error

	writes []Write
	levels map[int]Level
}

var _ Board = (*Recorder)(nil)

// NewRecorder creates a Recorder accepting pins in [0, pins). Zero means no limit
func NewRecorder(pins int) *Recorder {
	return &Recorder{
		Pins:   pins,
		levels: map[int]Level{},
	}
}

// WriteDigital records the write
func (r *Recorder) WriteDigital(pin int, value Level) error {
	if pin < 0 || (r.Pins > 0 && pin >= r.Pins) {
		return PinError{Pin: pin, Pins: r.Pins}
	}
	if r.OnWrite != nil {
		err := r.OnWrite(pin, value)
		if err != nil {
			return err
		}
	}

	if r.levels == nil {
		r.levels = map[int]Level{}
	}
	r.writes = append(r.writes, Write{Pin: pin, Value: value})
	r.levels[pin] = value
	return nil
}

// Writes returns a copy of every recorded write
func (r *Recorder) Writes() []Write {
	return append([]Write(nil), r.writes...)
}

// Level returns the last value written to pin
func (r *Recorder) Level(pin int) Level {
	return r.levels[pin]
}

// Patterns groups the recorded writes into frames of len(pins) writes and renders each frame as a
// bit string in the order of pins, like "1100". Trailing partial frames are dropped
func (r *Recorder) Patterns(pins []int) []string {
	n := len(pins)
	if n == 0 {
		return nil
	}

	index := make(map[int]int, n)
	for i, p := range pins {
		index[p] = i
	}

	var result []string
	for start := 0; start+n <= len(r.writes); start += n {
		frame := make([]byte, n)
		for i := range frame {
			frame[i] = '?'
		}
		for _, w := range r.writes[start : start+n] {
			if i, ok := index[w.Pin]; ok {
				frame[i] = w.Value.String()[0]
			}
		}
		result = append(result, string(frame))
	}
	return result
}

// Reset forgets all writes
func (r *Recorder) Reset() {
	r.writes = nil
	r.levels = map[int]Level{}
}
