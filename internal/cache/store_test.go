package cache

import (
	"testing"

	"github.com/chanmesh/chanmesh/internal/testutil/testlog"
)

func TestStorePutGet(t *testing.T) {
	testlog.Start(t)
	s := NewStore()
	s.Put("channels/evm:1", []string{"ch-1"})

	e, ok := s.Get("channels/evm:1")
	if !ok {
		t.Fatalf("missing entry")
	}
	if e.Stale {
		t.Fatalf("fresh entry marked stale")
	}
	if e.StoredAt.IsZero() {
		t.Fatalf("missing stored-at timestamp")
	}
	if _, ok := s.Get("channels/evm:2"); ok {
		t.Fatalf("unexpected entry")
	}
}

func TestMarkStalePrefix(t *testing.T) {
	testlog.Start(t)
	s := NewStore()
	s.Put("channels/evm:1", 1)
	s.Put("channels/evm:1/detail/ch-9", 2)
	s.Put("balances/evm:1", 3)

	n := s.MarkStalePrefix("channels/evm:1")
	if n != 2 {
		t.Fatalf("marked=%d want 2", n)
	}
	if e, _ := s.Get("channels/evm:1"); !e.Stale {
		t.Fatalf("list entry not stale")
	}
	if e, _ := s.Get("channels/evm:1/detail/ch-9"); !e.Stale {
		t.Fatalf("detail entry not stale")
	}
	if e, _ := s.Get("balances/evm:1"); e.Stale {
		t.Fatalf("unrelated entry went stale")
	}

	// Re-marking an already stale set touches nothing new.
	if n := s.MarkStalePrefix("channels/evm:1"); n != 0 {
		t.Fatalf("re-mark=%d want 0", n)
	}

	// Absent prefixes are a no-op.
	if n := s.MarkStalePrefix("payments/evm:1"); n != 0 {
		t.Fatalf("absent prefix mark=%d want 0", n)
	}
}

func TestPutRefreshesStaleness(t *testing.T) {
	testlog.Start(t)
	s := NewStore()
	s.Put("balances/evm:1", 1)
	s.MarkStalePrefix("balances/")
	s.Put("balances/evm:1", 2)
	e, _ := s.Get("balances/evm:1")
	if e.Stale {
		t.Fatalf("rewrite should clear staleness")
	}
	if e.Value.(int) != 2 {
		t.Fatalf("value=%v", e.Value)
	}
}
