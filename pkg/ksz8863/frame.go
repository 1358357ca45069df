package ksz8863

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/bus"
)

// SPI commands, the first byte of every frame.
const (
	CmdRead  byte = 0x03
	CmdWrite byte = 0x02
)

// Frame sizing. A frame is [cmd, addr, payload...].
const (
	HeaderSize = 2
	// MaxXferValues is the max number of registers moved in one transaction.
	// It bounds the framer's buffers, the chip itself has no such limit.
	MaxXferValues = 8
	MaxXfer       = MaxXferValues + HeaderSize
)

// Register is an 8-bit register address.
type Register byte

// Framer builds command frames and runs them on a Link.
// It is not safe for concurrent use: the chip can't tell interleaved
// transactions apart, callers must serialize access per device.
type Framer struct {
	Link bus.Link

	transfers uint64
}

// NewFramer creates a Framer on the link.
func NewFramer(link bus.Link) *Framer {
	return &Framer{Link: link}
}

// Transfers returns the number of transactions issued on the link.
func (f *Framer) Transfers() uint64 {
	return f.transfers
}

// Transact exchanges the first length bytes of tx in one transaction and
// returns the received bytes.
func (f *Framer) Transact(tx []byte, length int) ([]byte, error) {
	var rx [MaxXfer]byte
	if err := f.transact(tx, rx[:], length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, rx[:length])
	return out, nil
}

func (f *Framer) transact(tx, rx []byte, length int) error {
	if length < HeaderSize || length > MaxXfer || length > len(tx) || length > len(rx) {
		return fmt.Errorf("transfer length %d: %w", length, ErrInvalidArgument)
	}
	f.transfers++
	if glog.V(2) {
		glog.Infof("SPI > % x", tx[:length])
	}
	if err := f.Link.Transfer(tx[:length], rx[:length]); err != nil {
		return &LinkError{Op: "transfer", Addr: Register(tx[1]), Err: err}
	}
	if glog.V(2) {
		glog.Infof("SPI < % x", rx[:length])
	}
	return nil
}

// Read reads count registers starting at addr.
func (f *Framer) Read(addr Register, count int) ([]byte, error) {
	if count < 0 || count > MaxXferValues {
		return nil, fmt.Errorf("read %d registers: %w", count, ErrInvalidArgument)
	}
	dst := make([]byte, count)
	if err := f.ReadInto(addr, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ReadInto reads len(dst) registers starting at addr into dst.
func (f *Framer) ReadInto(addr Register, dst []byte) error {
	count := len(dst)
	if count > MaxXferValues {
		return fmt.Errorf("read %d registers: %w", count, ErrInvalidArgument)
	}
	var tx, rx [MaxXfer]byte
	tx[0], tx[1] = CmdRead, byte(addr)
	if err := f.transact(tx[:], rx[:], count+HeaderSize); err != nil {
		if linkErr, ok := err.(*LinkError); ok {
			linkErr.Op = "read"
		}
		return err
	}
	// the first two bytes are clocked in while cmd and addr are sent.
	copy(dst, rx[HeaderSize:count+HeaderSize])
	return nil
}

// Write writes data to consecutive registers starting at addr.
func (f *Framer) Write(addr Register, data []byte) error {
	count := len(data)
	if count > MaxXferValues {
		return fmt.Errorf("write %d registers: %w", count, ErrInvalidArgument)
	}
	var tx, rx [MaxXfer]byte
	tx[0], tx[1] = CmdWrite, byte(addr)
	copy(tx[HeaderSize:], data)
	err := f.transact(tx[:], rx[:], count+HeaderSize)
	if linkErr, ok := err.(*LinkError); ok {
		linkErr.Op = "write"
	}
	return err
}
