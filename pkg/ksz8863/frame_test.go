package ksz8863

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/emul"
)

type recorder struct {
	frames [][]byte
	reply  []byte
	err    error
}

func (r *recorder) Transfer(tx, rx []byte) error {
	r.frames = append(r.frames, append([]byte(nil), tx...))
	if r.err != nil {
		return r.err
	}
	copy(rx, r.reply)
	return nil
}

func TestFramerRead(t *testing.T) {
	for count := 0; count <= MaxXferValues; count++ {
		rec := &recorder{reply: []byte{0xaa, 0xbb, 1, 2, 3, 4, 5, 6, 7, 8}}
		f := NewFramer(rec)
		data, err := f.Read(0x42, count)
		require.NoError(t, err)
		require.Len(t, rec.frames, 1)
		frame := rec.frames[0]
		require.Len(t, frame, count+2)
		require.Equal(t, CmdRead, frame[0])
		require.Equal(t, byte(0x42), frame[1])
		for _, b := range frame[2:] {
			require.Equal(t, byte(0), b)
		}
		require.Equal(t, rec.reply[2:count+2], data)
		require.Equal(t, uint64(1), f.Transfers())
	}
}

func TestFramerWrite(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for count := 0; count <= MaxXferValues; count++ {
		rec := &recorder{}
		f := NewFramer(rec)
		require.NoError(t, f.Write(0x10, payload[:count]))
		require.Len(t, rec.frames, 1)
		require.Equal(t, append([]byte{CmdWrite, 0x10}, payload[:count]...), rec.frames[0])
	}
}

func TestFramerOversize(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec)

	_, err := f.Read(0, MaxXferValues+1)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = f.Read(0, -1)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	err = f.ReadInto(0, make([]byte, MaxXferValues+1))
	require.True(t, errors.Is(err, ErrInvalidArgument))
	err = f.Write(0, make([]byte, MaxXferValues+1))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = f.Transact(make([]byte, MaxXfer+1), MaxXfer+1)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = f.Transact([]byte{CmdRead, 0}, 3)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = f.Transact([]byte{CmdRead}, 1)
	require.True(t, errors.Is(err, ErrInvalidArgument))

	require.Empty(t, rec.frames)
	require.Equal(t, uint64(0), f.Transfers())
}

func TestFramerTransact(t *testing.T) {
	rec := &recorder{reply: []byte{9, 8, 7, 6}}
	f := NewFramer(rec)
	rx, err := f.Transact([]byte{CmdRead, 5, 0, 0, 0xee}, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8, 7, 6}, rx)
	require.Equal(t, [][]byte{{CmdRead, 5, 0, 0}}, rec.frames)
}

func TestFramerLinkError(t *testing.T) {
	errBus := errors.New("bus fault")
	f := NewFramer(bus.LinkFunc(func(tx, rx []byte) error { return errBus }))

	_, err := f.Read(0x20, 2)
	require.True(t, IsLinkError(err))
	require.True(t, errors.Is(err, errBus))
	require.EqualError(t, err, "read 0x20: link error: bus fault")

	err = f.Write(0x21, []byte{1})
	require.True(t, IsLinkError(err))
	require.EqualError(t, err, "write 0x21: link error: bus fault")

	_, err = f.Transact([]byte{CmdRead, 0x22}, 2)
	require.EqualError(t, err, "transfer 0x22: link error: bus fault")
}

func TestFramerRoundTrip(t *testing.T) {
	f := NewFramer(emul.New(0))
	data := []byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3}
	for count := 0; count <= MaxXferValues; count++ {
		require.NoError(t, f.Write(0x20, data[:count]))
		out, err := f.Read(0x20, count)
		require.NoError(t, err)
		require.Equal(t, data[:count], out)
	}
}
