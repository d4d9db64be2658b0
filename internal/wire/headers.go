package wire

import (
	"net/http"
	"strconv"
	"strings"
)

// HTTP surface of the node protocol: one POST per call at
// /{Service}/{Method}, binary content type, explicit status metadata in
// response headers. Some node deployments omit the status headers entirely
// on HTTP success; callers must treat their absence as "unknown", not as
// failure.
const (
	ContentType           = "application/chanmesh-rpc"
	HeaderAcceptStreaming = "Chanmesh-Accept-Streaming"
	HeaderStatus          = "Chanmesh-Status"
	HeaderMessage         = "Chanmesh-Message"

	// SuccessMarker is the human-readable token some node builds embed in
	// otherwise unframed success bodies.
	SuccessMarker = "status: ok"

	StatusOK = 0
)

// StatusFromHeader extracts the node status metadata. ok reports whether the
// status header was present and parseable at all.
func StatusFromHeader(h http.Header) (code int, message string, ok bool) {
	raw := strings.TrimSpace(h.Get(HeaderStatus))
	if raw == "" {
		return 0, "", false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", false
	}
	return code, h.Get(HeaderMessage), true
}
