package ksz8863

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/bus"
)

// State is the bring-up state of a Device.
type State int

// Bring-up states.
const (
	StateUninitialized State = iota
	StateIdentified
	// StateReady is reserved for a started switch, nothing enters it yet.
	StateReady
	StateFailed
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateIdentified:    "identified",
	StateReady:         "ready",
	StateFailed:        "failed",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// BringUp identifies the chip. The device becomes StateIdentified on
// success and StateFailed on any error.
func (d *Device) BringUp() (Revision, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if d.state != StateUninitialized {
		return 0, fmt.Errorf("bring-up in state %s: %w", d.state, ErrInvalidState)
	}
	id, err := d.Identify()
	if err != nil {
		d.state = StateFailed
		return 0, err
	}
	rev, err := d.VerifyIdentity(id)
	if err != nil {
		d.state = StateFailed
		return 0, err
	}
	d.state = StateIdentified
	return rev, nil
}

// Start would enable switching and move an identified device to
// StateReady.
// TODO: set the start switch bit once its register is confirmed.
func (d *Device) Start() error {
	if err := d.usable(); err != nil {
		return err
	}
	if d.state != StateIdentified {
		return fmt.Errorf("start in state %s: %w", d.state, ErrInvalidState)
	}
	return ErrStartUnsupported
}

// Probe attaches a chip on the link and brings it up.
// On failure the returned Device is in StateFailed, the caller decides
// whether to retry or Close it.
func Probe(link bus.Link) (*Device, Revision, error) {
	glog.V(1).Infof("%s: probe", DriverName)
	dev := NewDevice(link)
	rev, err := dev.BringUp()
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			glog.Errorf("%s: invalid chip ID %s found", DriverName, notFound.Identity)
		} else {
			glog.Errorf("%s: probe failed: %v", DriverName, err)
		}
		return dev, 0, err
	}
	glog.Infof("%s: found KSZ8863, revision %d", DriverName, rev)
	return dev, rev, nil
}
