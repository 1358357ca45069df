// Package bus defines the synchronous serial link a switch chip is attached to.
package bus

import "io"

// Link performs one synchronous full-duplex exchange.
// tx and rx have the same length; rx receives what was clocked in
// while tx was clocked out. Timeouts, if any, belong to the Link.
type Link interface {
	Transfer(tx, rx []byte) error
}

// LinkFunc is func form of Link.
type LinkFunc func(tx, rx []byte) error

// Transfer implements Link.
func (f LinkFunc) Transfer(tx, rx []byte) error {
	return f(tx, rx)
}

// CloseLink closes the link if it holds resources.
func CloseLink(l Link) error {
	if closer, ok := l.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
