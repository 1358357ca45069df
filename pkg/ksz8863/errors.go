package ksz8863

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a request the framer refuses before any
	// bus activity, e.g. a payload larger than MaxXferValues.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates the chip identity doesn't match a KSZ8863.
	// Use errors.Is, the concrete error is *NotFoundError.
	ErrNotFound = errors.New("chip not found")
	// ErrDeviceFailed indicates bring-up failed and the device must not be used.
	ErrDeviceFailed = errors.New("device failed")
	// ErrClosed indicates the device has been detached.
	ErrClosed = errors.New("device closed")
	// ErrInvalidState indicates an operation not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrStartUnsupported is returned by Start. Which control bit enables
	// switching is not confirmed yet, so the switch is never started.
	ErrStartUnsupported = errors.New("switch start not supported")
)

// LinkError wraps a fault reported by the bus link.
type LinkError struct {
	Op   string
	Addr Register
	Err  error
}

// Error implements error.
func (e *LinkError) Error() string {
	return fmt.Sprintf("%s 0x%02x: link error: %v", e.Op, byte(e.Addr), e.Err)
}

// Unwrap returns the fault from the link.
func (e *LinkError) Unwrap() error {
	return e.Err
}

// NotFoundError carries the identity observed on a mismatch.
type NotFoundError struct {
	Identity ChipID
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("invalid chip ID %s found", e.Identity)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsLinkError returns true if err is or wraps a *LinkError.
func IsLinkError(err error) bool {
	var linkErr *LinkError
	return errors.As(err, &linkErr)
}
