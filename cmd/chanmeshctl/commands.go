package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chanmesh/chanmesh/internal/cache"
	"github.com/chanmesh/chanmesh/internal/client"
	"github.com/chanmesh/chanmesh/internal/wire"
)

func networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the networks the node is configured for",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := buildClient()
			if err != nil {
				return err
			}
			networks, err := client.RetryRead(cmd.Context(), func(ctx context.Context) ([]wire.Network, error) {
				return c.GetNetworks(ctx)
			})
			if err != nil {
				return err
			}
			for _, n := range networks {
				fmt.Printf("%-8s %s\n", n.Protocol, n.ID)
			}
			return nil
		},
	}
}

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show balances merged across all configured networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, networks, err := buildClient()
			if err != nil {
				return err
			}
			if len(networks) == 0 {
				networks, err = c.GetNetworks(cmd.Context())
				if err != nil {
					return err
				}
			}
			aggregate := c.GetAllBalances(cmd.Context(), networks)
			if len(aggregate) == 0 {
				fmt.Println("no balances available")
				return nil
			}
			for networkKey, balances := range aggregate {
				for asset, amount := range balances.Assets {
					fmt.Printf("%-20s %-8s %s\n", networkKey, asset, amount)
				}
			}
			return nil
		},
	}
	return cmd
}

func channelsCmd() *cobra.Command {
	var networkFlag string
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels on one network",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, configured, err := buildClient()
			if err != nil {
				return err
			}
			network, err := parseNetworkFlag(networkFlag, configured)
			if err != nil {
				return err
			}
			channels, err := client.RetryRead(cmd.Context(), func(ctx context.Context) ([]wire.Channel, error) {
				return c.GetChannels(ctx, network)
			})
			if err != nil {
				return err
			}
			for _, ch := range channels {
				fmt.Printf("%-12s %-10s %-8s local=%s remote=%s peer=%s\n",
					ch.ID, ch.Status, ch.Asset, ch.LocalBalance, ch.RemoteBalance, ch.Peer)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&networkFlag, "network", "", "network id or protocol:id")
	return cmd
}

func openCmd() *cobra.Command {
	var networkFlag, peer, asset, amount string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, configured, err := buildClient()
			if err != nil {
				return err
			}
			network, err := parseNetworkFlag(networkFlag, configured)
			if err != nil {
				return err
			}
			ch, err := c.OpenChannel(cmd.Context(), wire.OpenChannelRequest{
				Network: network,
				Peer:    peer,
				Asset:   asset,
				Amount:  amount,
			})
			if err != nil {
				return err
			}
			fmt.Printf("opened %s (%s %s with %s)\n", ch.ID, ch.Capacity, ch.Asset, ch.Peer)
			return nil
		},
	}
	cmd.Flags().StringVar(&networkFlag, "network", "", "network id or protocol:id")
	cmd.Flags().StringVar(&peer, "peer", "", "counterparty identifier")
	cmd.Flags().StringVar(&asset, "asset", "", "asset symbol")
	cmd.Flags().StringVar(&amount, "amount", "", "funding amount")
	_ = cmd.MarkFlagRequired("peer")
	_ = cmd.MarkFlagRequired("asset")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func closeCmd() *cobra.Command {
	var networkFlag, channelID string
	var force bool
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a channel (cooperatively, or --force unilaterally)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, configured, err := buildClient()
			if err != nil {
				return err
			}
			network, err := parseNetworkFlag(networkFlag, configured)
			if err != nil {
				return err
			}
			var ch wire.Channel
			if force {
				ch, err = c.ForceCloseChannel(cmd.Context(), wire.ForceCloseChannelRequest{
					Network:   network,
					ChannelID: channelID,
				})
			} else {
				ch, err = c.CloseChannel(cmd.Context(), wire.CloseChannelRequest{
					Network:   network,
					ChannelID: channelID,
				})
			}
			if err != nil {
				return err
			}
			fmt.Printf("channel %s now %s\n", channelID, ch.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&networkFlag, "network", "", "network id or protocol:id")
	cmd.Flags().StringVar(&channelID, "channel", "", "channel id")
	cmd.Flags().BoolVar(&force, "force", false, "force-close without counterparty cooperation")
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}

func watchCmd() *cobra.Command {
	var networkFlag string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream node events and show the cache keys they invalidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, configured, err := buildClient()
			if err != nil {
				return err
			}
			network, err := parseNetworkFlag(networkFlag, configured)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := cache.NewStore()
			coordinator := cache.NewCoordinator(store, log.Logger)
			defer coordinator.Close()

			sub, err := c.SubscribeNodeEvents(ctx, network, func(ev wire.Event) {
				fmt.Printf("event %-22s -> stale %v\n", ev.Variant(), cache.StalePrefixes(network.Key(), ev))
				coordinator.OnEvent(network.Key(), ev)
			}, func(err error) {
				log.Warn().Err(err).Msg("stream interrupted")
			})
			if err != nil {
				return err
			}
			defer sub.Cancel()

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&networkFlag, "network", "", "network id or protocol:id")
	return cmd
}
