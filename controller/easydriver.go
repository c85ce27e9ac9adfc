package controller

import (
	"time"

	"github.com/calvinmclean/stepctl/clock"
)

// stepMover is the part of *easystepper.Device an EasyDriver uses
type stepMover interface {
	Move(steps int32)
	Off()
}

// EasyDriver is a Driver backed by the easystepper driver. easystepper paces its own coil phases from
// its configured RPM; the remainder of each step's time is waited out on a clock
type EasyDriver struct {
	device stepMover
	source clock.Source
	poll   time.Duration
}

var _ Driver = (*EasyDriver)(nil)

// Step moves a single step and returns once d has passed
func (d *EasyDriver) Step(clockwise bool, dur time.Duration) error {
	c := clock.NewWithSource(d.source, 0)
	c.SetPollInterval(d.poll)
	if clockwise {
		d.device.Move(1)
	} else {
		d.device.Move(-1)
	}
	c.WaitUntil(dur)
	return nil
}

// Off de-energizes the coils
func (d *EasyDriver) Off() error {
	d.device.Off()
	return nil
}
