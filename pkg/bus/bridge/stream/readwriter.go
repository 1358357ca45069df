// Package stream carries bridge packets on a byte stream.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/bridge"
)

// MaxPacketSize limits the size of a received packet.
const MaxPacketSize = 1024

// ReadWriter implements bridge.PacketReadWriter.
// Each packet is prefixed by 2-byte (little-endian) length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint16
	if err := binary.Read(p.ReadWriter, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriter, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return fmt.Errorf("packet size %d exceeds %d", len(pkt), MaxPacketSize)
	}
	buf := make([]byte, 2+len(pkt))
	binary.LittleEndian.PutUint16(buf, uint16(len(pkt)))
	copy(buf[2:], pkt)
	_, err := p.ReadWriter.Write(buf)
	return err
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Dial connects to a bridge server and returns the Link.
func Dial(network, address string) (*bridge.Link, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, err
	}
	return bridge.NewLink(New(conn)), nil
}

func init() {
	bus.Register("tcp", func(u *url.URL) (bus.Link, error) {
		return Dial("tcp", u.Host)
	})
	bus.Register("unix", func(u *url.URL) (bus.Link, error) {
		return Dial("unix", u.Path)
	})
}
