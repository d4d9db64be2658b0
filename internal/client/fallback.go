package client

import (
	"bytes"
	"errors"

	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

var errNoStatusMetadata = errors.New("no status metadata and no recognized success marker")

// fallbackDecode recovers a usable result from an HTTP-success response that
// carried no status metadata. Order:
//
//  1. structured decode of the deframed body, silently, when a decoder is
//     registered;
//  2. scan the raw text for the node's success marker; reads with a
//     documented empty default return it rather than an error;
//  3. otherwise a DecodeError with the HTTP status and truncated body.
//
// Mutations never pass step 2 without the explicit marker: assuming a
// mutation succeeded on no evidence is a correctness hazard.
func (c *Client) fallbackDecode(desc wire.Descriptor, entry wire.Entry, registered bool, httpStatus int, raw []byte) (any, error) {
	if registered {
		if body, err := frame.Decode(raw, c.limits); err == nil {
			if v, err := entry.DecodeResponse(body); err == nil {
				return v, nil
			}
		}
	}

	marker := bytes.Contains(raw, []byte(wire.SuccessMarker))

	if registered && entry.Kind == wire.KindRead && entry.EmptyValue != nil {
		c.log.Debug().
			Str("call", desc.String()).
			Bool("marker", marker).
			Msg("undecodable read response, returning empty default")
		return entry.EmptyValue(), nil
	}

	if marker {
		// Server said ok in plain text but sent no decodable payload. The
		// caller gets success with a zero-value result.
		c.log.Warn().
			Str("call", desc.String()).
			Msg("success marker without decodable payload")
		return nil, nil
	}

	return nil, &DecodeError{
		Desc:       desc,
		HTTPStatus: httpStatus,
		Body:       truncateBody(raw),
		Err:        errNoStatusMetadata,
	}
}
