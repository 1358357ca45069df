package announce

import (
	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/bus/bridge/mqtt"
)

// StateTopic is the topic suffix statuses are published on.
const StateTopic = "state"

// Announcer publishes retained statuses for one device name.
type Announcer struct {
	Queue *mqtt.Queue
	Name  string
}

// NewAnnouncer connects to the broker.
func NewAnnouncer(brokerURL, name string) (*Announcer, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	// the status is removed when this client disappears.
	opts.SetBinaryWill(prefix+name+"/"+StateTopic, nil, 1, true)
	q := mqtt.NewQueue(opts, prefix)
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return &Announcer{Queue: q, Name: name}, nil
}

// Announce publishes the status.
func (a *Announcer) Announce(s *Status) error {
	payload, err := s.Encode()
	if err != nil {
		return err
	}
	glog.V(1).Infof("announce %s: %s %s", a.Name, s.State, s.ChipID)
	token := a.Queue.PubWith(a.Name+"/"+StateTopic, payload, 1, true)
	token.Wait()
	return token.Error()
}

// Close withdraws the status and disconnects.
func (a *Announcer) Close() error {
	token := a.Queue.PubWith(a.Name+"/"+StateTopic, nil, 1, true)
	token.Wait()
	return a.Queue.Close()
}

// Watch subscribes statuses of all devices. An empty payload means the
// device is gone and is reported with a nil Status.
func Watch(q *mqtt.Queue, handler func(name string, s *Status)) *mqtt.Subscription {
	return q.Sub("+/"+StateTopic, func(topic string, payload []byte) {
		name := topic[:len(topic)-len(StateTopic)-1]
		if len(payload) == 0 {
			handler(name, nil)
			return
		}
		s, err := Decode(payload)
		if err != nil {
			glog.Warningf("%s: bad status: %v", topic, err)
			return
		}
		handler(name, s)
	})
}
