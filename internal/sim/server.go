// Package sim is an in-process chanmesh node double: it speaks the real
// wire contract (framed CBOR over POST, status metadata in headers, framed
// event streams) against live client code. Tests use it through
// httptest.NewServer(s.Router()); cmd/nodesim runs it standalone.
//
// Quirk modes reproduce the production node's protocol-compliance gaps so
// the client's fallback chain has something honest to chew on.
package sim

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chanmesh/chanmesh/internal/wire"
	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

// Quirk selects a deliberate protocol deviation for one method.
type Quirk int

const (
	// QuirkNone serves the full contract: framed body plus status header.
	QuirkNone Quirk = iota
	// QuirkOmitStatus serves the framed body but no status metadata.
	QuirkOmitStatus
	// QuirkMarkerOnly serves a plain-text body containing the success
	// marker, no frame, no status metadata.
	QuirkMarkerOnly
	// QuirkGarbage serves undecodable text with neither marker nor status.
	QuirkGarbage
)

type Server struct {
	state *State
	log   zerolog.Logger

	mu     sync.Mutex
	quirks map[wire.Descriptor]Quirk
	fail   map[wire.Descriptor]int // non-zero node status to return

	hubMu sync.Mutex
	subs  map[chan wire.Event]struct{}
}

func NewServer(state *State, log zerolog.Logger) *Server {
	return &Server{
		state:  state,
		log:    log,
		quirks: make(map[wire.Descriptor]Quirk),
		fail:   make(map[wire.Descriptor]int),
		subs:   make(map[chan wire.Event]struct{}),
	}
}

// SetQuirk makes one method misbehave in the given way.
func (s *Server) SetQuirk(desc wire.Descriptor, q Quirk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quirks[desc] = q
}

// SetFailure makes one method answer with a non-zero node status.
func (s *Server) SetFailure(desc wire.Descriptor, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[desc] = code
}

func (s *Server) quirkFor(desc wire.Descriptor) Quirk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quirks[desc]
}

func (s *Server) failureFor(desc wire.Descriptor) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[desc]
}

// Publish delivers an event to every open stream.
func (s *Server) Publish(event wire.Event) {
	s.hubMu.Lock()
	defer s.hubMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
			// Slow stream; drop rather than block the publisher.
		}
	}
}

func (s *Server) subscribe() chan wire.Event {
	ch := make(chan wire.Event, 16)
	s.hubMu.Lock()
	s.subs[ch] = struct{}{}
	s.hubMu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan wire.Event) {
	s.hubMu.Lock()
	delete(s.subs, ch)
	s.hubMu.Unlock()
}

// StreamCount reports the number of open event streams. Tests use it to
// wait for a subscriber before publishing.
func (s *Server) StreamCount() int {
	s.hubMu.Lock()
	defer s.hubMu.Unlock()
	return len(s.subs)
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"POST"},
		AllowHeaders: []string{"Origin", "Content-Type", wire.HeaderAcceptStreaming},
		MaxAge:       12 * time.Hour,
	}))

	r.POST("/NodeService/:method", s.handleNode)
	r.POST("/ClientService/SubscribeEvents", s.handleStream)
	return r
}

func (s *Server) handleNode(c *gin.Context) {
	method := c.Param("method")
	if method == "SubscribeEvents" {
		s.handleStream(c)
		return
	}
	desc := wire.Descriptor{Service: "NodeService", Method: method}

	body, err := readRequestPayload(c)
	if err != nil {
		c.String(http.StatusBadRequest, "bad frame: %v", err)
		return
	}

	resp, nodeErr := s.dispatch(desc, body)
	if nodeErr != nil {
		s.writeFailure(c, nodeErr)
		return
	}
	s.writeResponse(c, desc, resp)
}

type nodeError struct {
	code    int
	message string
}

func (e *nodeError) Error() string { return e.message }

func (s *Server) dispatch(desc wire.Descriptor, body []byte) (any, error) {
	if code := s.failureFor(desc); code != 0 {
		return nil, &nodeError{code: code, message: "simulated node failure"}
	}
	switch desc.Method {
	case "GetNetworks":
		return wire.GetNetworksResponse{Networks: s.state.Networks()}, nil
	case "GetBalances":
		var req wire.GetBalancesRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		return wire.GetBalancesResponse{Balances: s.state.Balances(req.Network)}, nil
	case "GetChannels":
		var req wire.GetChannelsRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		return wire.GetChannelsResponse{Channels: s.state.Channels(req.Network)}, nil
	case "OpenChannel":
		var req wire.OpenChannelRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		ch := s.state.OpenChannel(req)
		s.Publish(wire.Event{ChannelUpdated: &wire.ChannelUpdated{Channel: ch}})
		return wire.OpenChannelResponse{Channel: ch}, nil
	case "Deposit":
		var req wire.DepositRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		ch, ok := s.state.FindChannel(req.Network, req.ChannelID)
		if !ok {
			return nil, &nodeError{code: 5, message: "channel not found"}
		}
		s.Publish(wire.Event{ChannelUpdated: &wire.ChannelUpdated{Channel: ch}})
		return wire.DepositResponse{Channel: ch}, nil
	case "Withdraw":
		var req wire.WithdrawRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		ch, ok := s.state.FindChannel(req.Network, req.ChannelID)
		if !ok {
			return nil, &nodeError{code: 5, message: "channel not found"}
		}
		s.Publish(wire.Event{ChannelUpdated: &wire.ChannelUpdated{Channel: ch}})
		return wire.WithdrawResponse{Channel: ch}, nil
	case "CloseChannel", "ForceCloseChannel":
		var req wire.CloseChannelRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		ch, ok := s.state.SetChannelStatus(req.Network, req.ChannelID, wire.ChannelStatusClosed)
		if !ok {
			return nil, &nodeError{code: 5, message: "channel not found"}
		}
		s.Publish(wire.Event{ChannelClosed: &wire.ChannelClosed{Network: req.Network, ChannelID: req.ChannelID}})
		return wire.CloseChannelResponse{Channel: ch}, nil
	case "EstimateFees":
		var req wire.EstimateFeesRequest
		if err := wire.Unmarshal(body, &req); err != nil {
			return nil, &nodeError{code: 3, message: "bad request payload"}
		}
		return wire.EstimateFeesResponse{Fee: wire.FeeEstimate{Asset: req.Asset, Amount: "0.0001"}}, nil
	default:
		return nil, &nodeError{code: 12, message: fmt.Sprintf("unimplemented method %q", desc.Method)}
	}
}

func (s *Server) writeFailure(c *gin.Context, nodeErr error) {
	ne, ok := nodeErr.(*nodeError)
	if !ok {
		ne = &nodeError{code: 2, message: nodeErr.Error()}
	}
	c.Header(wire.HeaderStatus, strconv.Itoa(ne.code))
	c.Header(wire.HeaderMessage, ne.message)
	c.Data(http.StatusOK, wire.ContentType, frame.Encode(nil))
}

func (s *Server) writeResponse(c *gin.Context, desc wire.Descriptor, resp any) {
	payload, err := wire.Marshal(resp)
	if err != nil {
		c.String(http.StatusInternalServerError, "encode: %v", err)
		return
	}
	switch s.quirkFor(desc) {
	case QuirkOmitStatus:
		c.Data(http.StatusOK, wire.ContentType, frame.Encode(payload))
	case QuirkMarkerOnly:
		c.String(http.StatusOK, "call handled, status: ok\n")
	case QuirkGarbage:
		c.String(http.StatusOK, "<html>unexpected proxy output</html>")
	default:
		c.Header(wire.HeaderStatus, strconv.Itoa(wire.StatusOK))
		c.Data(http.StatusOK, wire.ContentType, frame.Encode(payload))
	}
}

func (s *Server) handleStream(c *gin.Context) {
	body, err := readRequestPayload(c)
	if err != nil {
		c.String(http.StatusBadRequest, "bad frame: %v", err)
		return
	}
	var req wire.SubscribeEventsRequest
	if err := wire.Unmarshal(body, &req); err != nil {
		c.String(http.StatusBadRequest, "bad subscribe payload: %v", err)
		return
	}

	events := s.subscribe()
	defer s.unsubscribe(events)

	c.Header("Content-Type", wire.ContentType)
	c.Status(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			payload, err := wire.Marshal(event)
			if err != nil {
				s.log.Error().Err(err).Msg("encode stream event")
				return
			}
			if _, err := c.Writer.Write(frame.Encode(payload)); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func readRequestPayload(c *gin.Context) ([]byte, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	return frame.Decode(raw, frame.DefaultLimits())
}
