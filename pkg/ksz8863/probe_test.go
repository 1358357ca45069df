package ksz8863

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ksz8863/pkg/bus/emul"
)

func TestBringUp(t *testing.T) {
	chip := emul.New(1)
	dev, rev, err := Probe(chip)
	require.NoError(t, err)
	require.Equal(t, Revision(1), rev)
	require.Equal(t, StateIdentified, dev.State())

	_, err = dev.BringUp()
	require.True(t, errors.Is(err, ErrInvalidState))
	require.Equal(t, StateIdentified, dev.State())

	require.Equal(t, ErrStartUnsupported, dev.Start())
	require.Equal(t, StateIdentified, dev.State())

	// identified devices stay usable
	require.NoError(t, dev.WriteU8(0x40, 1))
}

func TestBringUpNotFound(t *testing.T) {
	chip := emul.New(0)
	chip.SetReg(0, 0x88)
	chip.SetReg(1, 0x11)
	dev, _, err := Probe(chip)
	require.True(t, errors.Is(err, ErrNotFound))
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, ChipID(0x1088), notFound.Identity)
	require.Equal(t, StateFailed, dev.State())
}

func TestBringUpLinkFault(t *testing.T) {
	for n := 0; n < 2; n++ {
		chip := emul.New(0)
		chip.FailAfter(n, errBus)
		dev, _, err := Probe(chip)
		require.True(t, IsLinkError(err), "fault after %d reads", n)
		require.Equal(t, StateFailed, dev.State())
		transfers := chip.Transfers()

		_, err = dev.ReadU8(0)
		require.Equal(t, ErrDeviceFailed, err)
		require.Equal(t, ErrDeviceFailed, dev.WriteU8(0x40, 1))
		require.Equal(t, ErrDeviceFailed, dev.Start())
		_, err = dev.BringUp()
		require.True(t, errors.Is(err, ErrInvalidState))
		require.Equal(t, transfers, chip.Transfers())
	}
}

func TestStartBeforeBringUp(t *testing.T) {
	dev := NewDevice(emul.New(0))
	require.True(t, errors.Is(dev.Start(), ErrInvalidState))
	require.Equal(t, StateUninitialized, dev.State())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "uninitialized", StateUninitialized.String())
	require.Equal(t, "identified", StateIdentified.String())
	require.Equal(t, "ready", StateReady.String())
	require.Equal(t, "failed", StateFailed.String())
	require.Equal(t, "state(9)", State(9).String())
}
