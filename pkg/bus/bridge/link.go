package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	// ErrRemoteFault indicates the remote end failed the transfer.
	ErrRemoteFault = errors.New("remote bus fault")
	// ErrClosed indicates the Link is closed.
	ErrClosed = errors.New("bridge closed")
)

// ResponseLengthError indicates the response doesn't match the request.
type ResponseLengthError struct {
	Expected int
	Actual   int
}

// Error implements error.
func (e *ResponseLengthError) Error() string {
	return fmt.Sprintf("response length %d, expect %d", e.Actual, e.Expected)
}

// Seq tags a request and its response.
type Seq byte

// NewSeq creates a random sequence number.
func NewSeq() Seq {
	return Seq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number, 0 is never used.
func (s Seq) Next() Seq {
	if n := s + 1; n != 0 {
		return n
	}
	return 1
}

// Link implements bus.Link over a PacketReadWriter.
type Link struct {
	ReadWriter PacketReadWriter
	// OnClose is called once when the Link is closed.
	OnClose func() error

	seq    Seq
	lock   sync.Mutex
	closed bool
}

// NewLink creates a Link.
func NewLink(rw PacketReadWriter) *Link {
	return &Link{ReadWriter: rw, seq: NewSeq()}
}

// Transfer implements bus.Link.
func (l *Link) Transfer(tx, rx []byte) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.seq = l.seq.Next()
	req := make([]byte, len(tx)+1)
	req[0] = byte(l.seq)
	copy(req[1:], tx)
	if err := l.ReadWriter.WritePacket(req); err != nil {
		return err
	}
	for {
		pkt, err := l.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		if len(pkt) == 0 || Seq(pkt[0]) != l.seq {
			// reply to an earlier, abandoned request.
			glog.V(2).Infof("drop stale response % x, expect seq %d", pkt, l.seq)
			continue
		}
		pkt = pkt[1:]
		if len(pkt) == 0 && len(tx) > 0 {
			return ErrRemoteFault
		}
		if len(pkt) != len(rx) {
			return &ResponseLengthError{Expected: len(rx), Actual: len(pkt)}
		}
		copy(rx, pkt)
		return nil
	}
}

// Close implements io.Closer.
func (l *Link) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	var err error
	if closer, ok := l.ReadWriter.(io.Closer); ok {
		err = closer.Close()
	}
	if l.OnClose != nil {
		if err1 := l.OnClose(); err == nil {
			err = err1
		}
	}
	return err
}
