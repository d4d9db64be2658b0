package client

import (
	"context"
	"errors"
	"testing"

	"github.com/chanmesh/chanmesh/internal/testutil/testlog"
	"github.com/chanmesh/chanmesh/internal/wire"
)

func TestRetryReadStopsOnSuccess(t *testing.T) {
	testlog.Start(t)
	attempts := 0
	v, err := RetryRead(context.Background(), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", &TransportError{Desc: wire.NodeGetNetworks, Err: errors.New("conn refused")}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v != "ok" || attempts != 2 {
		t.Fatalf("v=%q attempts=%d", v, attempts)
	}
}

func TestRetryReadIsBoundedToThreeAttempts(t *testing.T) {
	testlog.Start(t)
	attempts := 0
	_, err := RetryRead(context.Background(), func(context.Context) (int, error) {
		attempts++
		return 0, &TransportError{Desc: wire.NodeGetNetworks, Err: errors.New("still down")}
	})
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts=%d want 3", attempts)
	}
}

func TestRetryReadDoesNotRetryRemoteErrors(t *testing.T) {
	testlog.Start(t)
	attempts := 0
	_, err := RetryRead(context.Background(), func(context.Context) (int, error) {
		attempts++
		return 0, &RemoteError{Desc: wire.NodeGetNetworks, Code: 13, Message: "nope"}
	})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts=%d want 1", attempts)
	}
}

func TestRetryReadHonoursContextCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := RetryRead(ctx, func(context.Context) (int, error) {
			attempts++
			if attempts == 1 {
				cancel()
			}
			return 0, &TransportError{Desc: wire.NodeGetNetworks, Err: errors.New("down")}
		})
		done <- err
	}()
	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts=%d want 1", attempts)
	}
}

func TestRetryDelayIsCapped(t *testing.T) {
	testlog.Start(t)
	if retryDelay(1) != retryInitialDelay {
		t.Fatalf("attempt1 delay=%v", retryDelay(1))
	}
	if retryDelay(2) != 2*retryInitialDelay {
		t.Fatalf("attempt2 delay=%v", retryDelay(2))
	}
	if retryDelay(10) != retryMaxDelay {
		t.Fatalf("attempt10 delay=%v want cap %v", retryDelay(10), retryMaxDelay)
	}
}
