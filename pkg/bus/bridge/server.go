package bridge

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/bus"
)

// Server serves transfers from a PacketReadWriter on a bus.Link.
type Server struct {
	ReadWriter PacketReadWriter
	Link       bus.Link
}

// NewServer creates a Server.
func NewServer(rw PacketReadWriter, link bus.Link) *Server {
	return &Server{ReadWriter: rw, Link: link}
}

// Run implements Runnable. It returns when reading a packet fails,
// io.EOF is reported as nil.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		pkt, err := s.ReadWriter.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(pkt) == 0 {
			glog.Warning("drop request without seq")
			continue
		}
		if err = s.ReadWriter.WritePacket(s.serve(pkt)); err != nil {
			return err
		}
	}
}

// serve answers [seq, tx...] with [seq, rx...], or just [seq] on a fault.
func (s *Server) serve(req []byte) []byte {
	tx := req[1:]
	if len(tx) == 0 {
		return req[:1]
	}
	resp := make([]byte, len(req))
	resp[0] = req[0]
	if err := s.Link.Transfer(tx, resp[1:]); err != nil {
		glog.Warningf("transfer % x failed: %v", tx, err)
		return resp[:1]
	}
	return resp
}
