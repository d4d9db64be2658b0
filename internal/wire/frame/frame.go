package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderLen is the fixed envelope prefix: 1 compression-flag byte plus a
// 4-byte big-endian payload length.
const HeaderLen = 5

const FlagUncompressed byte = 0x00

var (
	ErrShortFrame            = errors.New("frame: buffer shorter than frame header")
	ErrTruncatedPayload      = errors.New("frame: declared length exceeds available bytes")
	ErrPayloadTooLarge       = errors.New("frame: payload too large")
	ErrCompressionUnsupported = errors.New("frame: compressed frames not supported")
)

// Limits constrains frame decode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 8 * 1024 * 1024}
}

// Encode wraps one message payload in a wire frame. The compression flag is
// always FlagUncompressed; the node does not negotiate compression.
func Encode(payload []byte) []byte {
	buf := make([]byte, HeaderLen+len(payload))
	buf[0] = FlagUncompressed
	binary.BigEndian.PutUint32(buf[1:HeaderLen], uint32(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf
}

// Decode extracts the first frame's payload from buf. A buffer shorter than
// the header or a declared length past the end of buf fails closed; the
// result is never silently truncated. Bytes after the frame are ignored so a
// response carrying a trailing status frame still decodes.
func Decode(buf []byte, limits Limits) ([]byte, error) {
	if len(buf) < HeaderLen {
		return nil, ErrShortFrame
	}
	if buf[0] != FlagUncompressed {
		return nil, fmt.Errorf("%w: flag=0x%02x", ErrCompressionUnsupported, buf[0])
	}
	n := binary.BigEndian.Uint32(buf[1:HeaderLen])
	if n > limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	if uint32(len(buf)-HeaderLen) < n {
		return nil, fmt.Errorf("%w: declared=%d available=%d", ErrTruncatedPayload, n, len(buf)-HeaderLen)
	}
	payload := make([]byte, n)
	copy(payload, buf[HeaderLen:HeaderLen+int(n)])
	return payload, nil
}

// Reader yields successive frame payloads from an unbounded byte stream.
// Next never reads past one frame's 5+N bytes before returning it.
type Reader struct {
	r      io.Reader
	limits Limits
}

func NewReader(r io.Reader, limits Limits) *Reader {
	return &Reader{r: r, limits: limits}
}

// Next returns the next complete frame payload. io.EOF is returned only on a
// clean frame boundary; a stream that ends mid-frame yields ErrShortFrame or
// ErrTruncatedPayload.
func (r *Reader) Next() ([]byte, error) {
	var header [HeaderLen]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	if header[0] != FlagUncompressed {
		return nil, fmt.Errorf("%w: flag=0x%02x", ErrCompressionUnsupported, header[0])
	}
	n := binary.BigEndian.Uint32(header[1:])
	if n > r.limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r.r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: declared=%d", ErrTruncatedPayload, n)
			}
			return nil, err
		}
	}
	return payload, nil
}
