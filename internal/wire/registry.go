package wire

import (
	"fmt"
)

// Descriptor identifies one wire endpoint.
type Descriptor struct {
	Service string
	Method  string
}

func (d Descriptor) Path() string {
	return "/" + d.Service + "/" + d.Method
}

func (d Descriptor) String() string {
	return d.Service + "/" + d.Method
}

// Kind classifies how permissive the fallback decode path may be. Reads may
// degrade to a documented empty default; mutations must never synthesize
// success without an explicit marker.
type Kind int

const (
	KindRead Kind = iota
	KindMutation
)

// Entry is the typed encode/decode pair for one descriptor, plus its
// fallback classification. EmptyValue is nil for methods with no documented
// empty-on-success default.
type Entry struct {
	Kind           Kind
	EncodeRequest  func(req any) ([]byte, error)
	DecodeResponse func(data []byte) (any, error)
	EmptyValue     func() any
}

// Unary call descriptors.
var (
	NodeGetNetworks       = Descriptor{Service: "NodeService", Method: "GetNetworks"}
	NodeGetBalances       = Descriptor{Service: "NodeService", Method: "GetBalances"}
	NodeGetChannels       = Descriptor{Service: "NodeService", Method: "GetChannels"}
	NodeOpenChannel       = Descriptor{Service: "NodeService", Method: "OpenChannel"}
	NodeDeposit           = Descriptor{Service: "NodeService", Method: "Deposit"}
	NodeWithdraw          = Descriptor{Service: "NodeService", Method: "Withdraw"}
	NodeCloseChannel      = Descriptor{Service: "NodeService", Method: "CloseChannel"}
	NodeForceCloseChannel = Descriptor{Service: "NodeService", Method: "ForceCloseChannel"}
	NodeEstimateFees      = Descriptor{Service: "NodeService", Method: "EstimateFees"}
)

// Stream descriptors.
var (
	NodeSubscribeEvents   = Descriptor{Service: "NodeService", Method: "SubscribeEvents"}
	ClientSubscribeEvents = Descriptor{Service: "ClientService", Method: "SubscribeEvents"}
)

func entry[Req, Resp any](kind Kind, empty func() any) Entry {
	return Entry{
		Kind: kind,
		EncodeRequest: func(req any) ([]byte, error) {
			r, ok := req.(Req)
			if !ok {
				return nil, fmt.Errorf("wire: request is %T, want %T", req, r)
			}
			return Marshal(r)
		},
		DecodeResponse: func(data []byte) (any, error) {
			var v Resp
			if err := Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		EmptyValue: empty,
	}
}

var registry = map[Descriptor]Entry{
	NodeGetNetworks: entry[GetNetworksRequest, GetNetworksResponse](KindRead, func() any {
		return GetNetworksResponse{Networks: []Network{}}
	}),
	NodeGetBalances: entry[GetBalancesRequest, GetBalancesResponse](KindRead, func() any {
		return GetBalancesResponse{Balances: EmptyBalances()}
	}),
	NodeGetChannels: entry[GetChannelsRequest, GetChannelsResponse](KindRead, func() any {
		return GetChannelsResponse{Channels: []Channel{}}
	}),
	// A synthesized zero fee would be misleading, so EstimateFees carries no
	// empty default even though it is a read.
	NodeEstimateFees: entry[EstimateFeesRequest, EstimateFeesResponse](KindRead, nil),

	NodeOpenChannel:       entry[OpenChannelRequest, OpenChannelResponse](KindMutation, nil),
	NodeDeposit:           entry[DepositRequest, DepositResponse](KindMutation, nil),
	NodeWithdraw:          entry[WithdrawRequest, WithdrawResponse](KindMutation, nil),
	NodeCloseChannel:      entry[CloseChannelRequest, CloseChannelResponse](KindMutation, nil),
	NodeForceCloseChannel: entry[ForceCloseChannelRequest, ForceCloseChannelResponse](KindMutation, nil),
}

// Lookup returns the registered encode/decode pair for d. Absence is not an
// error; the caller falls back to generic handling.
func Lookup(d Descriptor) (Entry, bool) {
	e, ok := registry[d]
	return e, ok
}
