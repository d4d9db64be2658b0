package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chanmesh/chanmesh/internal/testutil/testlog"
	"github.com/chanmesh/chanmesh/internal/wire"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chanmesh.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfig(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
base_url = "http://node.internal:5001"
reconnect_delay_ms = 2500
http2 = true

[[networks]]
protocol = "evm"
id = "11155111"

[[networks]]
protocol = "utxo"
id = "testnet4"
`)
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://node.internal:5001" {
		t.Fatalf("base_url=%q", cfg.BaseURL)
	}
	if !cfg.HTTP2 {
		t.Fatalf("http2 flag dropped")
	}
	if cfg.ReconnectDelay() != 2500*time.Millisecond {
		t.Fatalf("reconnect delay=%v", cfg.ReconnectDelay())
	}
	nets := cfg.WireNetworks()
	if len(nets) != 2 || nets[0] != (wire.Network{Protocol: wire.ProtocolEVM, ID: "11155111"}) {
		t.Fatalf("networks=%+v", nets)
	}
}

func TestLoadClientConfigDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, ``)
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:5001" {
		t.Fatalf("default base_url=%q", cfg.BaseURL)
	}
	if cfg.ReconnectDelay() != 5*time.Second {
		t.Fatalf("default reconnect delay=%v", cfg.ReconnectDelay())
	}
}

func TestValidateRejectsUnknownProtocol(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[[networks]]
protocol = "carrier-pigeon"
id = "1"
`)
	if _, err := LoadClientConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRejectsMissingNetworkID(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[[networks]]
protocol = "evm"
id = ""
`)
	if _, err := LoadClientConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}
