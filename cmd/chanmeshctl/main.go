package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chanmesh/chanmesh/internal/client"
	"github.com/chanmesh/chanmesh/internal/config"
	"github.com/chanmesh/chanmesh/internal/logging"
	"github.com/chanmesh/chanmesh/internal/wire"
)

var (
	flagBaseURL string
	flagConfig  string
)

func main() {
	logging.ConfigureRuntime()

	rootCmd := &cobra.Command{
		Use:           "chanmeshctl",
		Short:         "Inspect and drive a chanmesh payment-channel node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "node endpoint (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to chanmesh.toml")

	rootCmd.AddCommand(
		networksCmd(),
		balancesCmd(),
		channelsCmd(),
		openCmd(),
		closeCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// buildClient resolves config file and flags into a live client plus the
// configured network list.
func buildClient() (*client.Client, []wire.Network, error) {
	cfg := config.ClientConfig{BaseURL: client.DefaultBaseURL}
	if flagConfig != "" {
		loaded, err := config.LoadClientConfig(flagConfig)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	clientCfg := client.Config{
		BaseURL:        cfg.BaseURL,
		ReconnectDelay: cfg.ReconnectDelay(),
	}
	if cfg.HTTP2 {
		clientCfg.HTTPClient = client.NewHTTP2Client()
	}
	c, err := client.New(clientCfg)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg.WireNetworks(), nil
}

func parseNetworkFlag(raw string, configured []wire.Network) (wire.Network, error) {
	if raw == "" {
		if len(configured) > 0 {
			return configured[0], nil
		}
		return wire.Network{}, fmt.Errorf("no --network given and no networks configured")
	}
	for _, n := range configured {
		if n.ID == raw || n.Key() == raw {
			return n, nil
		}
	}
	return wire.Network{Protocol: wire.ProtocolEVM, ID: raw}, nil
}
