package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/kv"
	"github.com/tablestakes/holdem/internal/relay"
	"github.com/tablestakes/holdem/internal/server"
)

var CLI struct {
	Config   string `short:"c" default:"tablestakes.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	NATS     string `help:"NATS URL for the event relay (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if CLI.Addr != "" {
		cfg.Server.Addr = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.NATS != "" {
		cfg.Server.NATSURL = CLI.NATS
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		ctx.Exit(1)
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	var opts []server.ServerOption
	if cfg.Server.NATSURL != "" {
		r, err := relay.Dial(cfg.Server.NATSURL, logger)
		if err != nil {
			logger.Fatal("failed to connect event relay", "url", cfg.Server.NATSURL, "error", err)
		}
		defer r.Close()
		opts = append(opts, server.WithExtraSinks(r))
	}

	srv := server.New(cfg, kv.NewMemoryStore(), chopEvaluator{}, logger, opts...)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(runCtx); err != nil {
		logger.Fatal("server exited", "error", err)
	}
}

// chopEvaluator is a stand-in for a real hand-ranking engine: every showdown
// is a single tie tier, so pots chop in proportion to each player's stake.
// Deployments plug a ranking implementation in here.
type chopEvaluator struct{}

func (chopEvaluator) Evaluate(players []*game.Player, _ []deck.Card) []game.Tier {
	tier := make(game.Tier, 0, len(players))
	for _, p := range players {
		tier = append(tier, game.RankedHand{Player: p})
	}
	return []game.Tier{tier}
}
