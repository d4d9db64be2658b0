package client

import (
	"context"

	"github.com/chanmesh/chanmesh/internal/wire"
)

// Typed operation surface consumed by the dashboard layer. Each function
// returns a decoded value or a classified error; a marker-confirmed success
// with no decodable payload yields the type's zero value.

func asResponse[T any](v any) T {
	t, _ := v.(T)
	return t
}

func (c *Client) GetNetworks(ctx context.Context) ([]wire.Network, error) {
	v, err := c.Invoke(ctx, wire.NodeGetNetworks, wire.GetNetworksRequest{})
	if err != nil {
		return nil, err
	}
	return asResponse[wire.GetNetworksResponse](v).Networks, nil
}

func (c *Client) GetBalances(ctx context.Context, network wire.Network) (wire.Balances, error) {
	v, err := c.Invoke(ctx, wire.NodeGetBalances, wire.GetBalancesRequest{Network: network})
	if err != nil {
		return wire.Balances{}, err
	}
	return asResponse[wire.GetBalancesResponse](v).Balances, nil
}

// GetAllBalances fans the balance read out across every configured network
// and merges the successes. Missing networks simply have no key in the
// result.
func (c *Client) GetAllBalances(ctx context.Context, networks []wire.Network) map[string]wire.Balances {
	return fanOut(ctx, c, "GetBalances", networks, c.GetBalances)
}

func (c *Client) GetChannels(ctx context.Context, network wire.Network) ([]wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeGetChannels, wire.GetChannelsRequest{Network: network})
	if err != nil {
		return nil, err
	}
	return asResponse[wire.GetChannelsResponse](v).Channels, nil
}

func (c *Client) GetAllChannels(ctx context.Context, networks []wire.Network) map[string][]wire.Channel {
	return fanOut(ctx, c, "GetChannels", networks, c.GetChannels)
}

func (c *Client) OpenChannel(ctx context.Context, req wire.OpenChannelRequest) (wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeOpenChannel, req)
	if err != nil {
		return wire.Channel{}, err
	}
	return asResponse[wire.OpenChannelResponse](v).Channel, nil
}

func (c *Client) Deposit(ctx context.Context, req wire.DepositRequest) (wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeDeposit, req)
	if err != nil {
		return wire.Channel{}, err
	}
	return asResponse[wire.DepositResponse](v).Channel, nil
}

func (c *Client) Withdraw(ctx context.Context, req wire.WithdrawRequest) (wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeWithdraw, req)
	if err != nil {
		return wire.Channel{}, err
	}
	return asResponse[wire.WithdrawResponse](v).Channel, nil
}

func (c *Client) CloseChannel(ctx context.Context, req wire.CloseChannelRequest) (wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeCloseChannel, req)
	if err != nil {
		return wire.Channel{}, err
	}
	return asResponse[wire.CloseChannelResponse](v).Channel, nil
}

func (c *Client) ForceCloseChannel(ctx context.Context, req wire.ForceCloseChannelRequest) (wire.Channel, error) {
	v, err := c.Invoke(ctx, wire.NodeForceCloseChannel, req)
	if err != nil {
		return wire.Channel{}, err
	}
	return asResponse[wire.ForceCloseChannelResponse](v).Channel, nil
}

func (c *Client) EstimateFees(ctx context.Context, req wire.EstimateFeesRequest) (wire.FeeEstimate, error) {
	v, err := c.Invoke(ctx, wire.NodeEstimateFees, req)
	if err != nil {
		return wire.FeeEstimate{}, err
	}
	return asResponse[wire.EstimateFeesResponse](v).Fee, nil
}

func (c *Client) SubscribeNodeEvents(ctx context.Context, network wire.Network, onEvent EventHandler, onError ErrorHandler) (*Subscription, error) {
	return c.Subscribe(ctx, wire.NodeSubscribeEvents, network, onEvent, onError)
}

func (c *Client) SubscribeClientEvents(ctx context.Context, network wire.Network, onEvent EventHandler, onError ErrorHandler) (*Subscription, error) {
	return c.Subscribe(ctx, wire.ClientSubscribeEvents, network, onEvent, onError)
}
