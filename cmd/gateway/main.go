// Command gateway is a demonstration venue connectivity process: it loads
// venue config, opens a Socket Client to the venue, and feeds every
// received frame into a book builder that maintains per-instrument Book
// Level Engine sides. It wires the Socket Client, Clock Core, and Book
// Level Engine together the way a real venue gateway would, but carries no
// matching or crossing logic of its own.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forsete/internal/bookbuilder"
	"forsete/internal/clock"
	"forsete/internal/transport"
	"forsete/internal/venueconfig"
)

func main() {
	configPath := flag.String("config", "configs/gateway.yaml", "path to venue config YAML")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := venueconfig.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load venue config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid venue config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	liveClock := clock.NewLiveClock()
	defer liveClock.Stop()

	builder := bookbuilder.NewBuilder(liveClock)

	var heartbeat *transport.HeartbeatConfig
	if cfg.Socket.HeartbeatInterval > 0 {
		heartbeat = &transport.HeartbeatConfig{
			Interval: cfg.Socket.HeartbeatInterval,
			Message:  []byte("HB"),
		}
	}

	client, err := transport.Connect(transport.SocketConfig{
		Address:         cfg.Socket.Address,
		TLS:             cfg.Socket.TLS,
		ServerName:      cfg.Socket.ServerName,
		Suffix:          []byte(cfg.Socket.Suffix),
		Handler:         builder.HandleFrame,
		Heartbeat:       heartbeat,
		ReadIdleTimeout: cfg.Socket.ReadIdleTimeout,
		PostConnection: func() {
			log.Info().Str("address", cfg.Socket.Address).Msg("connected to venue")
		},
		PostReconnection: func() {
			log.Info().Msg("reconnected to venue")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to venue")
	}

	log.Info().Str("trader", cfg.Trader.ID).Msg("gateway running")

	<-ctx.Done()
	log.Info().Msg("shutting down gateway")
	client.Disconnect()
}
