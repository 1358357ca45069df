// Package ksz8863 provides register access to a Microchip KSZ8863
// 3-port switch over SPI, and the bring-up check identifying the chip.
package ksz8863

import (
	"github.com/robotalks/ksz8863/pkg/bus"
)

// Driver identifiers.
const (
	DriverName = "ksz8863"
	Compatible = "microchip,ksz8863"
)

// Device is the handle of one attached chip.
// All state besides the bring-up state lives in the chip registers.
// Device does no locking, at most one operation may be in flight.
type Device struct {
	framer *Framer
	state  State
	closed bool
}

// NewDevice creates an uninitialized Device on the link.
func NewDevice(link bus.Link) *Device {
	return &Device{framer: NewFramer(link)}
}

// Framer returns the underlying framer.
func (d *Device) Framer() *Framer {
	return d.framer
}

// State returns the bring-up state.
func (d *Device) State() State {
	return d.state
}

func (d *Device) usable() error {
	switch {
	case d.closed:
		return ErrClosed
	case d.state == StateFailed:
		return ErrDeviceFailed
	}
	return nil
}

// ReadRegs reads count consecutive registers.
func (d *Device) ReadRegs(addr Register, count int) ([]byte, error) {
	if err := d.usable(); err != nil {
		return nil, err
	}
	return d.framer.Read(addr, count)
}

// WriteRegs writes consecutive registers.
func (d *Device) WriteRegs(addr Register, data []byte) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.framer.Write(addr, data)
}

// ReadU8 reads a single register.
func (d *Device) ReadU8(addr Register) (byte, error) {
	if err := d.usable(); err != nil {
		return 0, err
	}
	var val [1]byte
	if err := d.framer.ReadInto(addr, val[:]); err != nil {
		return 0, err
	}
	return val[0], nil
}

// WriteU8 writes a single register.
func (d *Device) WriteU8(addr Register, val byte) error {
	return d.WriteRegs(addr, []byte{val})
}

// Identify reads the chip identity. It never touches the bring-up state.
func (d *Device) Identify() (ChipID, error) {
	id0, err := d.ReadU8(RegChipID0)
	if err != nil {
		return 0, err
	}
	id1, err := d.ReadU8(RegChipID1)
	if err != nil {
		return 0, err
	}
	return MakeChipID(id0, id1), nil
}

// VerifyIdentity is VerifyIdentity on the device.
func (d *Device) VerifyIdentity(id ChipID) (Revision, error) {
	return VerifyIdentity(id)
}

// Close detaches the device and closes the link if needed.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return bus.CloseLink(d.framer.Link)
}
