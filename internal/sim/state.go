package sim

import (
	"fmt"
	"sync"

	"github.com/chanmesh/chanmesh/internal/wire"
)

// State is the simulated node's ledger view. All access goes through the
// mutex; handlers and test fixtures share it.
type State struct {
	mu       sync.Mutex
	networks []wire.Network
	balances map[string]wire.Balances
	channels map[string][]wire.Channel
	nextID   int
}

func NewState() *State {
	return &State{
		balances: make(map[string]wire.Balances),
		channels: make(map[string][]wire.Channel),
	}
}

// SeedDemo loads a small two-network fixture.
func SeedDemo() *State {
	s := NewState()
	sepolia := wire.Network{Protocol: wire.ProtocolEVM, ID: "11155111"}
	testnet4 := wire.Network{Protocol: wire.ProtocolUTXO, ID: "testnet4"}
	s.AddNetwork(sepolia, wire.Balances{Assets: map[string]string{"eth": "1.25", "usdc": "300.00"}})
	s.AddNetwork(testnet4, wire.Balances{Assets: map[string]string{"btc": "0.05"}})
	s.PutChannel(wire.Channel{
		ID:            "ch-demo-1",
		Network:       sepolia,
		Peer:          "peer-a",
		Asset:         "usdc",
		Capacity:      "100.00",
		LocalBalance:  "60.00",
		RemoteBalance: "40.00",
		Status:        wire.ChannelStatusOpen,
	})
	return s
}

func (s *State) AddNetwork(n wire.Network, balances wire.Balances) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = append(s.networks, n)
	s.balances[n.Key()] = balances
}

func (s *State) Networks() []wire.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Network, len(s.networks))
	copy(out, s.networks)
	return out
}

func (s *State) Balances(n wire.Network) wire.Balances {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[n.Key()]
	if !ok {
		return wire.EmptyBalances()
	}
	return b
}

func (s *State) Channels(n wire.Network) []wire.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Channel, len(s.channels[n.Key()]))
	copy(out, s.channels[n.Key()])
	return out
}

func (s *State) PutChannel(ch wire.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ch.Network.Key()
	for i, existing := range s.channels[key] {
		if existing.ID == ch.ID {
			s.channels[key][i] = ch
			return
		}
	}
	s.channels[key] = append(s.channels[key], ch)
}

func (s *State) OpenChannel(req wire.OpenChannelRequest) wire.Channel {
	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("ch-%d", s.nextID)
	s.mu.Unlock()
	ch := wire.Channel{
		ID:            id,
		Network:       req.Network,
		Peer:          req.Peer,
		Asset:         req.Asset,
		Capacity:      req.Amount,
		LocalBalance:  req.Amount,
		RemoteBalance: "0",
		Status:        wire.ChannelStatusOpen,
	}
	s.PutChannel(ch)
	return ch
}

// FindChannel returns the channel and whether it exists.
func (s *State) FindChannel(n wire.Network, id string) (wire.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels[n.Key()] {
		if ch.ID == id {
			return ch, true
		}
	}
	return wire.Channel{}, false
}

// SetChannelStatus transitions a channel and reports success.
func (s *State) SetChannelStatus(n wire.Network, id string, status wire.ChannelStatus) (wire.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := n.Key()
	for i, ch := range s.channels[key] {
		if ch.ID == id {
			ch.Status = status
			s.channels[key][i] = ch
			return ch, true
		}
	}
	return wire.Channel{}, false
}
