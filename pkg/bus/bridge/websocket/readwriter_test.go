package websocket

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ksz8863/pkg/bus/emul"
	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

func TestWebsocketBridge(t *testing.T) {
	chip := emul.New(1)
	srv := httptest.NewServer(Handler(chip))
	defer srv.Close()

	u, err := url.Parse("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	link, err := Dial(u)
	require.NoError(t, err)
	defer link.Close()

	dev, _, err := ksz8863.Probe(link)
	require.NoError(t, err)
	require.Equal(t, ksz8863.StateIdentified, dev.State())
	val, err := dev.ReadU8(ksz8863.RegChipID1)
	require.NoError(t, err)
	require.Equal(t, byte(0x32), val)
}
