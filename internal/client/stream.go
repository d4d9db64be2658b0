package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chanmesh/chanmesh/internal/observability"
	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

// EventHandler receives each decoded domain event, synchronously and in
// connection order. A handler that blocks stalls further delivery on its
// connection.
type EventHandler func(wire.Event)

// ErrorHandler is notified of every stream failure before a reconnect is
// scheduled.
type ErrorHandler func(error)

// Subscription owns one live event stream. Cancel is idempotent; after the
// first call no further handler invocations occur and the underlying
// connection is released, even if a reconnect was already scheduled.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Done closes once the subscriber goroutine has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe opens a long-lived server-push stream for desc on one network.
// On any transport or decode error the subscriber notifies onError, tears
// the connection down, and reconnects after the client's fixed delay,
// forever, until cancelled. Loss of live updates is degraded-but-recoverable
// so there is no backoff growth and no attempt cap.
func (c *Client) Subscribe(ctx context.Context, desc wire.Descriptor, network wire.Network, onEvent EventHandler, onError ErrorHandler) (*Subscription, error) {
	if onEvent == nil {
		return nil, errors.New("client: onEvent handler required")
	}
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go c.streamLoop(ctx, desc, network, onEvent, onError, sub)
	return sub, nil
}

func (c *Client) streamLoop(ctx context.Context, desc wire.Descriptor, network wire.Network, onEvent EventHandler, onError ErrorHandler, sub *Subscription) {
	defer close(sub.done)
	for {
		err := c.streamOnce(ctx, desc, network, onEvent)
		if ctx.Err() != nil {
			return
		}
		if err != nil && onError != nil {
			onError(err)
		}
		observability.RecordStreamReconnect(desc.Service, network.Key())
		c.log.Debug().
			Str("stream", desc.String()).
			Str("network", network.Key()).
			Dur("delay", c.reconnectDelay).
			Err(err).
			Msg("stream interrupted, reconnecting")

		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// streamOnce runs one connection to completion. It returns the error that
// ended the stream; a server-side close surfaces as a TransportError so the
// loop reconnects.
func (c *Client) streamOnce(ctx context.Context, desc wire.Descriptor, network wire.Network, onEvent EventHandler) error {
	payload, err := wire.Marshal(wire.SubscribeEventsRequest{Network: network})
	if err != nil {
		return &EncodingError{Desc: desc, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(desc.Path()), bytes.NewReader(frame.Encode(payload)))
	if err != nil {
		return &EncodingError{Desc: desc, Err: err}
	}
	req.Header.Set("Content-Type", wire.ContentType)
	req.Header.Set(wire.HeaderAcceptStreaming, "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Desc: desc, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Desc: desc, HTTPStatus: resp.StatusCode}
	}

	r := frame.NewReader(resp.Body, c.limits)
	for {
		body, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &TransportError{Desc: desc, Err: io.EOF}
			}
			return &TransportError{Desc: desc, Err: err}
		}
		var event wire.Event
		if err := wire.Unmarshal(body, &event); err != nil {
			return &DecodeError{Desc: desc, HTTPStatus: resp.StatusCode, Body: truncateBody(body), Err: err}
		}
		if ctx.Err() != nil {
			return nil
		}
		observability.RecordStreamEvent(desc.Service, event.Variant())
		onEvent(event)
	}
}
