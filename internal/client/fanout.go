package client

import (
	"context"
	"sync"

	"github.com/chanmesh/chanmesh/internal/observability"
	"github.com/chanmesh/chanmesh/internal/wire"
)

// fanOut invokes call once per network, concurrently, and merges only the
// successful results keyed by Network.Key. A failing network is logged and
// dropped; it never cancels or fails its siblings. Zero successes yield an
// empty aggregate, not an error: "at least one must succeed" semantics are
// the caller's to enforce.
func fanOut[T any](ctx context.Context, c *Client, method string, networks []wire.Network, call func(context.Context, wire.Network) (T, error)) map[string]T {
	results := make(map[string]T, len(networks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, network := range networks {
		wg.Add(1)
		go func(network wire.Network) {
			defer wg.Done()
			v, err := call(ctx, network)
			if err != nil {
				observability.RecordFanoutFailure(method, network.Key())
				c.log.Warn().
					Str("method", method).
					Str("network", network.Key()).
					Err(err).
					Msg("fan-out call failed, dropping network from aggregate")
				return
			}
			mu.Lock()
			results[network.Key()] = v
			mu.Unlock()
		}(network)
	}
	wg.Wait()
	return results
}
