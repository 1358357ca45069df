package mqtt

import (
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/bridge"
)

// DefaultTimeout is the default time to wait for a packet.
const DefaultTimeout = time.Second

// ErrTimeout indicates no packet arrived in time.
var ErrTimeout = errors.New("MQTT packet timeout")

// ReadWriter implements bridge.PacketReadWriter on two topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string
	// Timeout bounds ReadPacket, 0 waits forever.
	Timeout time.Duration

	drainOnWrite bool
	sub          *Subscription
	packetCh     chan []byte
	done         chan struct{}
	closeOnce    sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 4),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForMaster sets topics for the side issuing transfers:
// PubTopic = name/mosi
// SubTopic = name/miso
// Responses pending from timed out transfers are dropped before a
// new request is sent.
func (p *ReadWriter) ForMaster(name string) *ReadWriter {
	p.drainOnWrite = true
	p.Timeout = DefaultTimeout
	return p.WithTopics(name+"/miso", name+"/mosi")
}

// ForSlave sets topics for the side serving transfers:
// SubTopic = name/mosi
// PubTopic = name/miso
func (p *ReadWriter) ForSlave(name string) *ReadWriter {
	return p.WithTopics(name+"/mosi", name+"/miso")
}

// Subscribe starts receiving packets.
func (p *ReadWriter) Subscribe() error {
	p.sub = p.Queue.Sub(p.SubTopic, p.handleMsg)
	p.sub.Token.Wait()
	return p.sub.Token.Error()
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var timeout <-chan time.Time
	if p.Timeout > 0 {
		timer := time.NewTimer(p.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	case <-timeout:
		return nil, ErrTimeout
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if p.drainOnWrite {
		p.drain()
	}
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

func (p *ReadWriter) drain() {
	for {
		select {
		case <-p.packetCh:
		default:
			return
		}
	}
}

// Close unsubscribes, pending ReadPacket gets io.EOF.
func (p *ReadWriter) Close() (err error) {
	p.closeOnce.Do(func() {
		if p.sub != nil {
			err = p.sub.Close()
		}
		close(p.done)
	})
	return
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}

// Dial connects to the broker and returns a Link to the bridge named by
// the last path element of the URL, e.g. mqtt://broker:1883/ksz/sw0.
func Dial(u *url.URL) (*bridge.Link, error) {
	prefix, name := path.Split(strings.TrimPrefix(u.Path, "/"))
	if name == "" {
		return nil, errors.New("bridge name missing in MQTT URL")
	}
	q := NewQueue(ClientOptionsFrom(u), prefix)
	if err := q.Connect(); err != nil {
		return nil, err
	}
	rw := NewPacketReadWriter(q).ForMaster(name)
	if err := rw.Subscribe(); err != nil {
		q.Close()
		return nil, err
	}
	link := bridge.NewLink(rw)
	link.OnClose = q.Close
	return link, nil
}

func init() {
	for _, scheme := range []string{"mqtt", "ssl"} {
		bus.Register(scheme, func(u *url.URL) (bus.Link, error) {
			return Dial(u)
		})
	}
}
