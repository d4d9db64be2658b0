package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chanmesh/chanmesh/internal/wire"
)

// ClientConfig is the dashboard-side configuration for talking to a node.
type ClientConfig struct {
	BaseURL          string          `toml:"base_url"`
	Networks         []NetworkConfig `toml:"networks"`
	ReconnectDelayMS int             `toml:"reconnect_delay_ms"`
	HTTP2            bool            `toml:"http2"`
}

type NetworkConfig struct {
	Protocol string `toml:"protocol"`
	ID       string `toml:"id"`
}

func LoadClientConfig(path string) (ClientConfig, error) {
	var cfg ClientConfig
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5001"
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("client config missing base_url")
	}
	for i, nc := range cfg.Networks {
		if err := ValidateNetworkEntry(nc); err != nil {
			return fmt.Errorf("network[%d] invalid: %w", i, err)
		}
	}
	if cfg.ReconnectDelayMS < 0 {
		return fmt.Errorf("reconnect_delay_ms must not be negative")
	}
	return nil
}

func ValidateNetworkEntry(nc NetworkConfig) error {
	switch wire.Protocol(strings.TrimSpace(nc.Protocol)) {
	case wire.ProtocolEVM, wire.ProtocolUTXO:
	default:
		return fmt.Errorf("unknown protocol %q", nc.Protocol)
	}
	if strings.TrimSpace(nc.ID) == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

// WireNetworks converts the configured entries to wire values.
func (c ClientConfig) WireNetworks() []wire.Network {
	out := make([]wire.Network, 0, len(c.Networks))
	for _, nc := range c.Networks {
		out = append(out, wire.Network{
			Protocol: wire.Protocol(strings.TrimSpace(nc.Protocol)),
			ID:       strings.TrimSpace(nc.ID),
		})
	}
	return out
}

func (c ClientConfig) ReconnectDelay() time.Duration {
	if c.ReconnectDelayMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ReconnectDelayMS) * time.Millisecond
}
