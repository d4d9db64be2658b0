package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chanmesh/chanmesh/internal/sim"
	"github.com/chanmesh/chanmesh/internal/testutil/testlog"
	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

func newSimServer(t *testing.T, state *sim.State) (*sim.Server, *Client) {
	t.Helper()
	srv := sim.NewServer(state, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return srv, c
}

func TestNewRequiresBaseURL(t *testing.T) {
	testlog.Start(t)
	if _, err := New(Config{}); !errors.Is(err, ErrBaseURLRequired) {
		t.Fatalf("expected ErrBaseURLRequired, got %v", err)
	}
	if _, err := New(Config{BaseURL: "not a url"}); err == nil {
		t.Fatalf("expected error for unparseable url")
	}
	if _, err := New(Config{BaseURL: DefaultBaseURL}); err != nil {
		t.Fatalf("default base url rejected: %v", err)
	}
}

func TestGetNetworksHappyPath(t *testing.T) {
	testlog.Start(t)
	state := sim.NewState()
	state.AddNetwork(wire.Network{Protocol: wire.ProtocolEVM, ID: "11155111"}, wire.EmptyBalances())
	_, c := newSimServer(t, state)

	networks, err := c.GetNetworks(context.Background())
	if err != nil {
		t.Fatalf("get networks: %v", err)
	}
	if len(networks) != 1 {
		t.Fatalf("networks=%d want 1", len(networks))
	}
	if networks[0].ID != "11155111" || networks[0].Protocol != wire.ProtocolEVM {
		t.Fatalf("unexpected network: %+v", networks[0])
	}
}

func TestRemoteErrorCarriesCodeAndMessage(t *testing.T) {
	testlog.Start(t)
	srv, c := newSimServer(t, sim.SeedDemo())
	srv.SetFailure(wire.NodeGetChannels, 13)

	_, err := c.GetChannels(context.Background(), wire.Network{Protocol: wire.ProtocolEVM, ID: "11155111"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Code != 13 {
		t.Fatalf("code=%d want 13", remote.Code)
	}
	if remote.Message == "" {
		t.Fatalf("missing message")
	}
}

func TestUnreachableHostIsTransportError(t *testing.T) {
	testlog.Start(t)
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.GetNetworks(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestHTTPErrorWithoutMetadataIsTransportError(t *testing.T) {
	testlog.Start(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.GetNetworks(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("http status=%d", transport.HTTPStatus)
	}
}

func TestZeroStatusSkipsFallback(t *testing.T) {
	testlog.Start(t)
	// Status header proves success, so a garbage body must surface as a
	// DecodeError instead of degrading to the empty default.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(wire.HeaderStatus, strconv.Itoa(wire.StatusOK))
		_, _ = w.Write([]byte("not a frame"))
	}))
	defer ts.Close()
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.GetBalances(context.Background(), wire.Network{Protocol: wire.ProtocolEVM, ID: "1"})
	var decode *DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestOpenChannelHappyPath(t *testing.T) {
	testlog.Start(t)
	_, c := newSimServer(t, sim.SeedDemo())
	network := wire.Network{Protocol: wire.ProtocolEVM, ID: "11155111"}

	ch, err := c.OpenChannel(context.Background(), wire.OpenChannelRequest{
		Network: network,
		Peer:    "peer-b",
		Asset:   "usdc",
		Amount:  "25.00",
	})
	if err != nil {
		t.Fatalf("open channel: %v", err)
	}
	if ch.ID == "" || ch.Status != wire.ChannelStatusOpen {
		t.Fatalf("unexpected channel: %+v", ch)
	}

	channels, err := c.GetChannels(context.Background(), network)
	if err != nil {
		t.Fatalf("get channels: %v", err)
	}
	found := false
	for _, existing := range channels {
		if existing.ID == ch.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("opened channel missing from listing: %+v", channels)
	}
}

func TestUnregisteredDescriptorReturnsRawPayload(t *testing.T) {
	testlog.Start(t)
	payload, err := wire.Marshal(map[string]string{"version": "1.2.3"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(wire.HeaderStatus, "0")
		_, _ = w.Write(frame.Encode(payload))
	}))
	defer ts.Close()
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	v, err := c.Invoke(context.Background(), wire.Descriptor{Service: "NodeService", Method: "GetVersion"}, struct{}{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	raw, ok := v.([]byte)
	if !ok {
		t.Fatalf("expected raw payload bytes, got %T", v)
	}
	var decoded map[string]string
	if err := wire.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal raw payload: %v", err)
	}
	if decoded["version"] != "1.2.3" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}
