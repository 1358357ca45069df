// Package emul emulates the SPI register interface of a KSZ8863.
package emul

import (
	"errors"
	"sync"
)

// SPI commands understood by the emulated chip.
const (
	cmdRead  byte = 0x03
	cmdWrite byte = 0x02
)

// Identity register defaults.
const (
	regChipID0 = 0x00
	regChipID1 = 0x01

	DefaultChipID0 byte = 0x88
	DefaultChipID1 byte = 0x30
)

// ErrFrameTooShort is returned for transfers without cmd and addr.
var ErrFrameTooShort = errors.New("frame too short")

// Chip is an in-memory register file implementing bus.Link.
// Reads and writes auto-increment the register address.
type Chip struct {
	regs      [256]byte
	transfers int
	failAfter int
	failErr   error
	lock      sync.Mutex
}

// New creates a Chip with the given silicon revision.
func New(revision byte) *Chip {
	c := &Chip{failAfter: -1}
	c.regs[regChipID0] = DefaultChipID0
	c.regs[regChipID1] = DefaultChipID1 | (revision&0x07)<<1
	return c
}

// Transfer implements bus.Link.
func (c *Chip) Transfer(tx, rx []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.transfers++
	if c.failErr != nil && c.failAfter >= 0 && c.transfers > c.failAfter {
		return c.failErr
	}
	if len(tx) < 2 {
		return ErrFrameTooShort
	}
	for n := range rx {
		rx[n] = 0
	}
	addr := tx[1]
	switch tx[0] {
	case cmdRead:
		for n := 2; n < len(tx) && n < len(rx); n++ {
			rx[n] = c.regs[addr]
			addr++
		}
	case cmdWrite:
		for _, val := range tx[2:] {
			c.store(addr, val)
			addr++
		}
	default:
		for n := range rx {
			rx[n] = 0xff
		}
	}
	return nil
}

func (c *Chip) store(addr, val byte) {
	switch addr {
	case regChipID0:
	case regChipID1:
		c.regs[addr] = c.regs[addr]&^0x01 | val&0x01
	default:
		c.regs[addr] = val
	}
}

// Reg reads a register without a transfer.
func (c *Chip) Reg(addr byte) byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.regs[addr]
}

// SetReg sets a register without a transfer, read-only ones included.
func (c *Chip) SetReg(addr, val byte) {
	c.lock.Lock()
	c.regs[addr] = val
	c.lock.Unlock()
}

// Transfers returns the number of transfers seen.
func (c *Chip) Transfers() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.transfers
}

// Fail makes all following transfers fail with err.
func (c *Chip) Fail(err error) {
	c.FailAfter(0, err)
}

// FailAfter lets n more transfers succeed, then fails with err.
// A nil err clears the failure.
func (c *Chip) FailAfter(n int, err error) {
	c.lock.Lock()
	c.failAfter, c.failErr = c.transfers+n, err
	c.lock.Unlock()
}
