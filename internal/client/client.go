package client

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"

	"github.com/chanmesh/chanmesh/internal/wire/frame"
)

const (
	DefaultBaseURL        = "http://localhost:5001"
	DefaultReconnectDelay = 5 * time.Second
)

var ErrBaseURLRequired = errors.New("client: base url required")

// Config carries construction parameters. Every field except BaseURL has a
// working default. There is no package-level client instance; independent
// clients coexist freely.
type Config struct {
	BaseURL string

	// HTTPClient overrides the transport. The default has no per-call
	// timeout: a client-side deadline is the caller's job via ctx, and the
	// node's streaming responses must not be cut off by a blanket timeout.
	HTTPClient *http.Client

	Logger zerolog.Logger

	// ReconnectDelay is the fixed pause between stream reconnect attempts.
	ReconnectDelay time.Duration

	FrameLimits frame.Limits
}

// Client executes unary calls and stream subscriptions against one node
// endpoint.
type Client struct {
	base           *url.URL
	http           *http.Client
	log            zerolog.Logger
	reconnectDelay time.Duration
	limits         frame.Limits
	tracer         trace.Tracer
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, ErrBaseURLRequired
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, ErrBaseURLRequired
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	limits := cfg.FrameLimits
	if limits.MaxPayloadBytes == 0 {
		limits = frame.DefaultLimits()
	}

	return &Client{
		base:           base,
		http:           httpClient,
		log:            cfg.Logger,
		reconnectDelay: delay,
		limits:         limits,
		tracer:         otel.Tracer("github.com/chanmesh/chanmesh/internal/client"),
	}, nil
}

// NewHTTP2Client returns an http.Client that speaks HTTP/2 without TLS
// (h2c), for node deployments that multiplex many event streams over one
// connection.
func NewHTTP2Client() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLS: func(network, addr string, _ *tls.Config) (net.Conn, error) {
				return net.Dial(network, addr)
			},
		},
	}
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}
