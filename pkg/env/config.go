// Package env provides the common options of the tools.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/announce"
	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/ksz8863"

	// bus URL schemes
	_ "github.com/robotalks/ksz8863/pkg/bus/bridge/mqtt"
	_ "github.com/robotalks/ksz8863/pkg/bus/bridge/stream"
	_ "github.com/robotalks/ksz8863/pkg/bus/bridge/websocket"
)

// Config provides common options to attach a device.
type Config struct {
	// Name identifies the device in announcements and bridge topics.
	Name string
	// BusURL locates the SPI bus the chip is attached to.
	// e.g. tcp://host:port, unix:///path, ws://host:port/path,
	// mqtt://host:port/topic-prefix/name
	BusURL string
	// MQTTBrokerURL enables announcements if not empty.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig = Config{
	Name:   ksz8863.DriverName,
	BusURL: "tcp://localhost:8863",
}

func init() {
	if val := os.Getenv("KSZ_NAME"); val != "" {
		defaultConfig.Name = val
	}
	if val := os.Getenv("KSZ_BUS_URL"); val != "" {
		defaultConfig.BusURL = val
	}
	if val := os.Getenv("KSZ_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Device name.")
	flag.StringVar(&defaultConfig.BusURL, "bus", defaultConfig.BusURL, "SPI bus URL.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for announcements.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenBus opens the link to the chip.
func (c *Config) OpenBus() (bus.Link, error) {
	if c.BusURL == "" {
		return nil, fmt.Errorf("bus URL must be specified")
	}
	return bus.Open(c.BusURL)
}

// NewAnnouncer connects to the MQTT broker, nil if announcements are off.
func (c *Config) NewAnnouncer() (*announce.Announcer, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	a, err := announce.NewAnnouncer(c.MQTTBrokerURL, c.Name)
	if err != nil {
		return nil, fmt.Errorf("connect MQTT broker error: %v", err)
	}
	return a, nil
}

// Attach opens the bus and probes the chip, the status is announced if
// enabled. A device failing bring-up is returned along with the error.
func (c *Config) Attach() (*ksz8863.Device, error) {
	link, err := c.OpenBus()
	if err != nil {
		return nil, err
	}
	dev, rev, err := ksz8863.Probe(link)
	c.announce(announce.NewStatus(c.Name, dev, rev, err))
	return dev, err
}

func (c *Config) announce(status *announce.Status) {
	a, err := c.NewAnnouncer()
	if err != nil {
		glog.Warning(err)
		return
	}
	if a == nil {
		return
	}
	defer a.Queue.Close()
	status.BusURL = c.BusURL
	if err = a.Announce(status); err != nil {
		glog.Warningf("announce %s failed: %v", c.Name, err)
	}
}

// MustAttach attaches the device and fails on error.
func (c *Config) MustAttach() *ksz8863.Device {
	dev, err := c.Attach()
	if err != nil {
		log.Fatalln(err)
	}
	return dev
}
