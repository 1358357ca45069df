package env

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/emul"
	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

var errNoChip = errors.New("no chip")

// emul://<host> opens an emulated chip, the host selects how it behaves.
func init() {
	bus.Register("emul", func(u *url.URL) (bus.Link, error) {
		chip := emul.New(3)
		switch u.Host {
		case "ok":
		case "other":
			chip.SetReg(0, 0x95)
		case "fault":
			chip.Fail(errNoChip)
		default:
			return nil, errors.New("unknown chip " + u.Host)
		}
		return chip, nil
	})
}

func attach(t *testing.T, busURL string) (*ksz8863.Device, error) {
	conf := NewConfig()
	conf.BusURL = busURL
	conf.MQTTBrokerURL = ""
	return conf.Attach()
}

func TestAttach(t *testing.T) {
	dev, err := attach(t, "emul://ok")
	require.NoError(t, err)
	require.Equal(t, ksz8863.StateIdentified, dev.State())
	val, err := dev.ReadU8(ksz8863.RegChipID1)
	require.NoError(t, err)
	require.Equal(t, byte(0x36), val)
}

func TestAttachNotFound(t *testing.T) {
	dev, err := attach(t, "emul://other")
	require.True(t, errors.Is(err, ksz8863.ErrNotFound))
	require.NotNil(t, dev)
	require.Equal(t, ksz8863.StateFailed, dev.State())
	_, err = dev.ReadU8(ksz8863.RegChipID0)
	require.Equal(t, ksz8863.ErrDeviceFailed, err)
}

func TestAttachLinkFault(t *testing.T) {
	dev, err := attach(t, "emul://fault")
	require.True(t, ksz8863.IsLinkError(err))
	require.True(t, errors.Is(err, errNoChip))
	require.NotNil(t, dev)
	require.Equal(t, ksz8863.StateFailed, dev.State())
}

func TestAttachOpenFailure(t *testing.T) {
	dev, err := attach(t, "")
	require.Error(t, err)
	require.Nil(t, dev)

	dev, err = attach(t, "emul://missing")
	require.Error(t, err)
	require.Nil(t, dev)

	dev, err = attach(t, "nosuch://host")
	require.Error(t, err)
	require.Nil(t, dev)
}

func TestNewAnnouncerDisabled(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = ""
	a, err := conf.NewAnnouncer()
	require.NoError(t, err)
	require.Nil(t, a)
}
