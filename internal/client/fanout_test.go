package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chanmesh/chanmesh/internal/testutil/testlog"
	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

// balancesHandler answers GetBalances with a fixed amount, failing any
// network whose ID appears in failIDs.
func balancesHandler(t *testing.T, failIDs map[string]bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
			return
		}
		body, err := frame.Decode(raw, frame.DefaultLimits())
		if err != nil {
			t.Errorf("decode frame: %v", err)
			return
		}
		var req wire.GetBalancesRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
			return
		}
		if failIDs[req.Network.ID] {
			http.Error(w, "backend exploded", http.StatusInternalServerError)
			return
		}
		payload, err := wire.Marshal(wire.GetBalancesResponse{
			Balances: wire.Balances{Assets: map[string]string{"eth": "1." + req.Network.ID}},
		})
		if err != nil {
			t.Errorf("marshal response: %v", err)
			return
		}
		w.Header().Set(wire.HeaderStatus, "0")
		_, _ = w.Write(frame.Encode(payload))
	})
}

func TestFanOutIsolatesPerNetworkFailures(t *testing.T) {
	testlog.Start(t)
	ts := httptest.NewServer(balancesHandler(t, map[string]bool{"2": true}))
	defer ts.Close()
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	networks := []wire.Network{
		{Protocol: wire.ProtocolEVM, ID: "1"},
		{Protocol: wire.ProtocolEVM, ID: "2"},
		{Protocol: wire.ProtocolUTXO, ID: "3"},
	}
	aggregate := c.GetAllBalances(context.Background(), networks)
	if len(aggregate) != 2 {
		t.Fatalf("aggregate size=%d want 2: %+v", len(aggregate), aggregate)
	}
	if _, ok := aggregate["evm:2"]; ok {
		t.Fatalf("failed network leaked into aggregate")
	}
	if aggregate["evm:1"].Assets["eth"] != "1.1" {
		t.Fatalf("unexpected merge: %+v", aggregate)
	}
	if aggregate["utxo:3"].Assets["eth"] != "1.3" {
		t.Fatalf("unexpected merge: %+v", aggregate)
	}
}

func TestFanOutAllFailuresYieldEmptyAggregate(t *testing.T) {
	testlog.Start(t)
	ts := httptest.NewServer(balancesHandler(t, map[string]bool{"1": true, "2": true}))
	defer ts.Close()
	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	aggregate := c.GetAllBalances(context.Background(), []wire.Network{
		{Protocol: wire.ProtocolEVM, ID: "1"},
		{Protocol: wire.ProtocolEVM, ID: "2"},
	})
	if len(aggregate) != 0 {
		t.Fatalf("expected empty aggregate, got %+v", aggregate)
	}
}

func TestFanOutNoNetworks(t *testing.T) {
	testlog.Start(t)
	c, err := New(Config{BaseURL: DefaultBaseURL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	aggregate := c.GetAllBalances(context.Background(), nil)
	if len(aggregate) != 0 {
		t.Fatalf("expected empty aggregate, got %+v", aggregate)
	}
}
