package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chanmesh/chanmesh/internal/observability"
	"github.com/chanmesh/chanmesh/internal/wire"
)

// Invalidator is the cache surface the coordinator drives. *Store satisfies
// it; external caches can too.
type Invalidator interface {
	MarkStalePrefix(prefix string) int
}

// Key prefixes per network.
func ChannelsKey(networkKey string) string { return "channels/" + networkKey }
func BalancesKey(networkKey string) string { return "balances/" + networkKey }
func PaymentsKey(networkKey string) string { return "payments/" + networkKey }

// StalePrefixes maps an event variant to the cache-key prefixes it makes
// stale. Channel-state changes also invalidate balances because derived
// balance figures move with channel state.
func StalePrefixes(networkKey string, event wire.Event) []string {
	switch {
	case event.ChannelUpdated != nil, event.ChannelClosed != nil, event.AssetChannelUpdated != nil:
		return []string{ChannelsKey(networkKey), BalancesKey(networkKey)}
	case event.PaymentUpdated != nil:
		return []string{PaymentsKey(networkKey), BalancesKey(networkKey)}
	default:
		return nil
	}
}

// Coordinator turns domain events into invalidation decisions: one immediate
// stale-mark plus delayed re-marks of the same keys to absorb the node's
// read-after-write lag. The re-marks are deliberate redundancy against
// eventual consistency, not retries of a failed call.
type Coordinator struct {
	inv    Invalidator
	log    zerolog.Logger
	delays []time.Duration

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

// DefaultRevalidationDelays spaces the follow-up invalidation passes.
var DefaultRevalidationDelays = []time.Duration{2 * time.Second, 5 * time.Second}

func NewCoordinator(inv Invalidator, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		inv:    inv,
		log:    log,
		delays: DefaultRevalidationDelays,
	}
}

// OnEvent applies the invalidation plan for one decoded event. Events with
// no recognized variant are logged and dropped.
func (c *Coordinator) OnEvent(networkKey string, event wire.Event) {
	prefixes := StalePrefixes(networkKey, event)
	variant := event.Variant()
	if len(prefixes) == 0 {
		c.log.Debug().
			Str("variant", variant).
			Str("network", networkKey).
			Msg("event variant has no invalidation mapping")
		return
	}

	c.apply(variant, prefixes)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, delay := range c.delays {
		timer := time.AfterFunc(delay, func() {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			c.apply(variant, prefixes)
		})
		c.timers = append(c.timers, timer)
	}
}

func (c *Coordinator) apply(variant string, prefixes []string) {
	for _, prefix := range prefixes {
		c.inv.MarkStalePrefix(prefix)
	}
	observability.RecordCacheInvalidation(variant, len(prefixes))
	c.log.Debug().
		Str("variant", variant).
		Strs("prefixes", prefixes).
		Msg("cache invalidation pass")
}

// Close stops all pending delayed invalidations. Idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, timer := range c.timers {
		timer.Stop()
	}
	c.timers = nil
}
