package announce

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/ksz8863/pkg/bus/emul"
	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

func TestStatusIdentified(t *testing.T) {
	dev, rev, err := ksz8863.Probe(emul.New(1))
	require.NoError(t, err)
	s := NewStatus("sw0", dev, rev, nil)
	s.BusURL = "tcp://bridge:7000"
	require.Equal(t, ksz8863.Revision(1), s.Revision)

	payload, err := s.Encode()
	require.NoError(t, err)
	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, "sw0", decoded.Name)
	require.Equal(t, "tcp://bridge:7000", decoded.BusURL)
	require.Equal(t, ksz8863.StateIdentified, decoded.State)
	require.Equal(t, ksz8863.ChipID(0x3288), decoded.ChipID)
	require.Equal(t, ksz8863.Revision(1), decoded.Revision)
	require.Empty(t, decoded.Error)
	require.True(t, s.Time.Equal(decoded.Time))

	out, err := s.JSON()
	require.NoError(t, err)
	require.Contains(t, out, `"state":"identified"`)
}

func TestStatusFailed(t *testing.T) {
	chip := emul.New(0)
	chip.Fail(errors.New("no device"))
	dev, _, err := ksz8863.Probe(chip)
	require.Error(t, err)
	s := NewStatus("sw1", dev, 0, err)

	payload, err := s.Encode()
	require.NoError(t, err)
	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, ksz8863.StateFailed, decoded.State)
	require.Contains(t, decoded.Error, "no device")
	require.Equal(t, ksz8863.Revision(0), decoded.Revision)
	require.Equal(t, ksz8863.ChipID(0), decoded.ChipID)

	chip = emul.New(0)
	chip.SetReg(1, 0x10)
	dev, _, err = ksz8863.Probe(chip)
	require.Error(t, err)
	s = NewStatus("sw2", dev, 0, err)
	require.Equal(t, ksz8863.ChipID(0x1088), s.ChipID)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0x0a, 0x05})
	require.Error(t, err)

	payload, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"state": strValue("bogus"),
	}})
	require.NoError(t, err)
	_, err = Decode(payload)
	require.Error(t, err)

	s := &Status{State: ksz8863.StateFailed, Time: time.Now()}
	bad := s.Proto()
	bad.Fields["time"] = strValue("yesterday")
	payload, err = proto.Marshal(bad)
	require.NoError(t, err)
	_, err = Decode(payload)
	require.Error(t, err)
}
