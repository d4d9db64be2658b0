package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chanmesh/chanmesh/internal/observability"
	"github.com/chanmesh/chanmesh/internal/sim"
	"github.com/chanmesh/chanmesh/internal/wire"
)

// nodesim is a standalone chanmesh node double for dashboard development:
// it serves the demo fixture, pushes a synthetic event stream, and exposes
// prometheus metrics.
func main() {
	addr := flag.String("addr", ":5001", "listen address")
	eventEvery := flag.Duration("event-every", 10*time.Second, "synthetic event interval (0 disables)")
	flag.Parse()

	logger := observability.InitLogger("nodesim")
	observability.RegisterMetrics()

	state := sim.SeedDemo()
	server := sim.NewServer(state, logger)

	r := server.Router()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nodesim"})
	})

	if *eventEvery > 0 {
		go publishLoop(server, state, *eventEvery)
	}

	logger.Info().Str("addr", *addr).Msg("nodesim listening")
	if err := r.Run(*addr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// publishLoop emits a channel update for each known channel so connected
// dashboards see their caches churn.
func publishLoop(server *sim.Server, state *sim.State, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		for _, network := range state.Networks() {
			for _, ch := range state.Channels(network) {
				server.Publish(wire.Event{ChannelUpdated: &wire.ChannelUpdated{Channel: ch}})
			}
		}
	}
}
