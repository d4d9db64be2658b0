package wire

// Protocol is the ledger family a network belongs to.
type Protocol string

const (
	ProtocolEVM  Protocol = "evm"
	ProtocolUTXO Protocol = "utxo"
)

// Network identifies one chain the node is configured for. Values are
// immutable once obtained and passed by value into every call.
type Network struct {
	Protocol Protocol `cbor:"protocol"`
	ID       string   `cbor:"id"`
}

// Key returns the cache/aggregate key for a network.
func (n Network) Key() string {
	return string(n.Protocol) + ":" + n.ID
}

// ChannelStatus is the lifecycle state of a payment channel.
type ChannelStatus string

const (
	ChannelStatusPending ChannelStatus = "pending"
	ChannelStatusOpen    ChannelStatus = "open"
	ChannelStatusClosing ChannelStatus = "closing"
	ChannelStatusClosed  ChannelStatus = "closed"
)

// Channel is one payment channel as reported by the node. Amounts are
// decimal strings; the node owns precision and unit handling.
type Channel struct {
	ID            string        `cbor:"id"`
	Network       Network       `cbor:"network"`
	Peer          string        `cbor:"peer"`
	Asset         string        `cbor:"asset"`
	Capacity      string        `cbor:"capacity"`
	LocalBalance  string        `cbor:"local_balance"`
	RemoteBalance string        `cbor:"remote_balance"`
	Status        ChannelStatus `cbor:"status"`
}

// Balances maps asset symbol to spendable decimal amount.
type Balances struct {
	Assets map[string]string `cbor:"assets"`
}

// EmptyBalances is the documented default for balance reads whose response
// could not be decoded.
func EmptyBalances() Balances {
	return Balances{Assets: map[string]string{}}
}

// FeeEstimate is the node's cost projection for one transfer.
type FeeEstimate struct {
	Asset  string `cbor:"asset"`
	Amount string `cbor:"amount"`
}

// Payment is one transfer routed through a channel.
type Payment struct {
	ID        string `cbor:"id"`
	ChannelID string `cbor:"channel_id"`
	Asset     string `cbor:"asset"`
	Amount    string `cbor:"amount"`
	Direction string `cbor:"direction"`
	Status    string `cbor:"status"`
}

type GetNetworksRequest struct{}

type GetNetworksResponse struct {
	Networks []Network `cbor:"networks"`
}

type GetBalancesRequest struct {
	Network Network `cbor:"network"`
}

type GetBalancesResponse struct {
	Balances Balances `cbor:"balances"`
}

type GetChannelsRequest struct {
	Network Network `cbor:"network"`
}

type GetChannelsResponse struct {
	Channels []Channel `cbor:"channels"`
}

type OpenChannelRequest struct {
	Network Network `cbor:"network"`
	Peer    string  `cbor:"peer"`
	Asset   string  `cbor:"asset"`
	Amount  string  `cbor:"amount"`
}

type OpenChannelResponse struct {
	Channel Channel `cbor:"channel"`
}

type DepositRequest struct {
	Network   Network `cbor:"network"`
	ChannelID string  `cbor:"channel_id"`
	Amount    string  `cbor:"amount"`
}

type DepositResponse struct {
	Channel Channel `cbor:"channel"`
}

type WithdrawRequest struct {
	Network   Network `cbor:"network"`
	ChannelID string  `cbor:"channel_id"`
	Amount    string  `cbor:"amount"`
}

type WithdrawResponse struct {
	Channel Channel `cbor:"channel"`
}

type CloseChannelRequest struct {
	Network   Network `cbor:"network"`
	ChannelID string  `cbor:"channel_id"`
}

type CloseChannelResponse struct {
	Channel Channel `cbor:"channel"`
}

type ForceCloseChannelRequest struct {
	Network   Network `cbor:"network"`
	ChannelID string  `cbor:"channel_id"`
}

type ForceCloseChannelResponse struct {
	Channel Channel `cbor:"channel"`
}

type EstimateFeesRequest struct {
	Network Network `cbor:"network"`
	Asset   string  `cbor:"asset"`
	Amount  string  `cbor:"amount"`
}

type EstimateFeesResponse struct {
	Fee FeeEstimate `cbor:"fee"`
}

type SubscribeEventsRequest struct {
	Network Network `cbor:"network"`
}

// ChannelUpdated signals any state change on an open channel.
type ChannelUpdated struct {
	Channel Channel `cbor:"channel"`
}

// ChannelClosed signals a channel leaving the open set.
type ChannelClosed struct {
	Network   Network `cbor:"network"`
	ChannelID string  `cbor:"channel_id"`
}

// AssetChannelUpdated signals a state change on an asset-specific channel.
type AssetChannelUpdated struct {
	Asset   string  `cbor:"asset"`
	Channel Channel `cbor:"channel"`
}

// PaymentUpdated signals progress on a routed payment.
type PaymentUpdated struct {
	Network Network `cbor:"network"`
	Payment Payment `cbor:"payment"`
}

// Event is one decoded server-push message. Exactly one variant pointer is
// non-nil; events are constructed by the stream decode path and never
// mutated afterwards.
type Event struct {
	ChannelUpdated      *ChannelUpdated      `cbor:"channel_updated,omitempty"`
	ChannelClosed       *ChannelClosed       `cbor:"channel_closed,omitempty"`
	AssetChannelUpdated *AssetChannelUpdated `cbor:"asset_channel_updated,omitempty"`
	PaymentUpdated      *PaymentUpdated      `cbor:"payment_updated,omitempty"`
}

// Variant names the populated payload, or "unknown" when the server sent a
// shape this client version does not model.
func (e Event) Variant() string {
	switch {
	case e.ChannelUpdated != nil:
		return "channel_updated"
	case e.ChannelClosed != nil:
		return "channel_closed"
	case e.AssetChannelUpdated != nil:
		return "asset_channel_updated"
	case e.PaymentUpdated != nil:
		return "payment_updated"
	default:
		return "unknown"
	}
}
