package client

import (
	"fmt"

	"github.com/chanmesh/chanmesh/internal/wire"
)

// EncodingError means the request value could not be serialized. This is a
// programming error and is never retried.
type EncodingError struct {
	Desc wire.Descriptor
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("client: encode %s: %v", e.Desc, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// TransportError is a connection-level failure: unreachable host, aborted
// exchange, or a non-success HTTP status with no protocol metadata.
// Retryable for reads.
type TransportError struct {
	Desc       wire.Descriptor
	HTTPStatus int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: transport %s: %v", e.Desc, e.Err)
	}
	return fmt.Sprintf("client: transport %s: http status %d", e.Desc, e.HTTPStatus)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError means the node explicitly signalled failure via status
// metadata.
type RemoteError struct {
	Desc    wire.Descriptor
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("client: %s failed: code=%d message=%q", e.Desc, e.Code, e.Message)
}

// DecodeError means structured decoding failed and no fallback applied. The
// body is truncated for diagnostics.
type DecodeError struct {
	Desc       wire.Descriptor
	HTTPStatus int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("client: decode %s: http=%d body=%q err=%v", e.Desc, e.HTTPStatus, e.Body, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

const maxDiagnosticBody = 256

func truncateBody(body []byte) string {
	if len(body) > maxDiagnosticBody {
		return string(body[:maxDiagnosticBody]) + "..."
	}
	return string(body)
}
