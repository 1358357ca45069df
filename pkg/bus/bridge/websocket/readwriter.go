// Package websocket carries bridge packets as websocket binary messages.
package websocket

import (
	"net/url"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/bridge"
)

// ReadWriter implements bridge.PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves bridge transfers on link for each websocket client.
// The link is shared, clients are served one transfer at a time.
func Handler(link bus.Link) websocket.Handler {
	var lock sync.Mutex
	locked := bus.LinkFunc(func(tx, rx []byte) error {
		lock.Lock()
		defer lock.Unlock()
		return link.Transfer(tx, rx)
	})
	return websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		bridge.NewServer(New(conn), locked).Run(conn.Request().Context())
	})
}

// Dial connects to a bridge websocket endpoint.
func Dial(u *url.URL) (*bridge.Link, error) {
	origin := "http://localhost/"
	conn, err := websocket.Dial(u.String(), "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return bridge.NewLink(New(conn)), nil
}

func init() {
	for _, scheme := range []string{"ws", "wss"} {
		bus.Register(scheme, func(u *url.URL) (bus.Link, error) {
			return Dial(u)
		})
	}
}
