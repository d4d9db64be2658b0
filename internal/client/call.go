package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chanmesh/chanmesh/internal/observability"
	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

// Invoke runs one request/response exchange: encode, frame, POST, status
// inspection, decode. It performs no caching and no retries; retry policy
// belongs to the caller.
//
// Status handling: an explicit zero status header proves success and only
// the structured decoder runs; a non-zero status is a RemoteError; absent
// status metadata routes through the fallback chain.
func (c *Client) Invoke(ctx context.Context, desc wire.Descriptor, req any) (any, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, desc.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.service", desc.Service),
			attribute.String("rpc.method", desc.Method),
		),
	)
	defer span.End()

	v, err := c.invoke(ctx, desc, req)
	outcome := classifyOutcome(err)
	observability.RecordCall(desc.Service, desc.Method, outcome, time.Since(start))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("rpc.outcome", outcome))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return v, nil
}

func (c *Client) invoke(ctx context.Context, desc wire.Descriptor, req any) (any, error) {
	entry, registered := wire.Lookup(desc)

	var payload []byte
	var err error
	if registered {
		payload, err = entry.EncodeRequest(req)
	} else {
		payload, err = wire.Marshal(req)
	}
	if err != nil {
		return nil, &EncodingError{Desc: desc, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(desc.Path()), bytes.NewReader(frame.Encode(payload)))
	if err != nil {
		return nil, &EncodingError{Desc: desc, Err: err}
	}
	httpReq.Header.Set("Content-Type", wire.ContentType)
	httpReq.Header.Set(wire.HeaderAcceptStreaming, "true")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Desc: desc, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Desc: desc, Err: err}
	}

	if code, message, present := wire.StatusFromHeader(resp.Header); present {
		if code != wire.StatusOK {
			return nil, &RemoteError{Desc: desc, Code: code, Message: message}
		}
		// The trailer already proves success, so the permissive fallback
		// chain is skipped: a structured decode failure here surfaces.
		body, err := frame.Decode(raw, c.limits)
		if err != nil {
			return nil, &DecodeError{Desc: desc, HTTPStatus: resp.StatusCode, Body: truncateBody(raw), Err: err}
		}
		if !registered {
			return body, nil
		}
		v, err := entry.DecodeResponse(body)
		if err != nil {
			return nil, &DecodeError{Desc: desc, HTTPStatus: resp.StatusCode, Body: truncateBody(raw), Err: err}
		}
		return v, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Desc: desc, HTTPStatus: resp.StatusCode}
	}

	return c.fallbackDecode(desc, entry, registered, resp.StatusCode, raw)
}

func classifyOutcome(err error) string {
	switch err.(type) {
	case nil:
		return "ok"
	case *EncodingError:
		return "encoding_error"
	case *TransportError:
		return "transport_error"
	case *RemoteError:
		return "remote_error"
	case *DecodeError:
		return "decode_error"
	default:
		return "error"
	}
}
