package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/whitespur/cardano-sl/internal/chain"
	"github.com/whitespur/cardano-sl/internal/identity"
	"github.com/whitespur/cardano-sl/internal/network"
	"github.com/whitespur/cardano-sl/internal/security"
	"github.com/whitespur/cardano-sl/internal/slotting"
)

func main() {
	app := &cli.App{
		Name:  "eclipse-monitor",
		Usage: "slot-synchronized eclipse-attack detection for a PoS node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directory holding the local chain database",
				Value: "data",
			},
			&cli.TimestampFlag{
				Name:   "genesis-time",
				Usage:  "instant of slot 0/0 (RFC3339)",
				Layout: time.RFC3339,
			},
			&cli.DurationFlag{
				Name:  "slot-duration",
				Usage: "length of one slot",
				Value: 20 * time.Second,
			},
			&cli.Uint64Flag{
				Name:  "slots-per-epoch",
				Usage: "number of slots in one epoch",
				Value: security.DefaultConfig().SlotsPerEpoch,
			},
			&cli.Uint64Flag{
				Name:  "no-blocks-slot-threshold",
				Usage: "slots of purely self-produced chain before an eclipse alert",
				Value: security.DefaultConfig().NoBlocksSlotThreshold,
			},
			&cli.Uint64Flag{
				Name:  "no-commitments-epoch-threshold",
				Usage: "epochs without an own on-chain commitment before a warning",
				Value: security.DefaultConfig().NoCommitmentsEpochThreshold,
			},
			&cli.UintFlag{
				Name:  "security-depth",
				Usage: "recent blocks loaded per commitment check",
				Value: security.DefaultConfig().ChainSecurityDepth,
			},
			&cli.StringFlag{
				Name:  "listen-addr",
				Usage: "libp2p listen multiaddr",
				Value: "/ip4/0.0.0.0/tcp/3000",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Prometheus metrics listen address (empty to disable)",
			},
			&cli.StringFlag{
				Name:  "variant",
				Usage: "consensus variant: ouroboros or obft",
				Value: "ouroboros",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := zerolog.InfoLevel
	if c.Bool("debug") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	variant, err := security.ParseVariant(c.String("variant"))
	if err != nil {
		return err
	}

	cfg := security.Config{
		SlotsPerEpoch:               c.Uint64("slots-per-epoch"),
		NoBlocksSlotThreshold:       c.Uint64("no-blocks-slot-threshold"),
		NoCommitmentsEpochThreshold: c.Uint64("no-commitments-epoch-threshold"),
		ChainSecurityDepth:          c.Uint("security-depth"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	genesis := time.Now()
	if ts := c.Timestamp("genesis-time"); ts != nil {
		genesis = *ts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := chain.Open(logger, c.String("data-dir"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("close chain store")
		}
	}()

	id, err := identity.Generate()
	if err != nil {
		return err
	}
	logger.Info().Str("stakeholder", id.StakeholderID().Hex()).
		Stringer("variant", variant).Msg("starting eclipse monitor")

	host, err := libp2p.New(libp2p.ListenAddrStrings(c.String("listen-addr")))
	if err != nil {
		return fmt.Errorf("create libp2p host: %w", err)
	}
	defer func() {
		if err := host.Close(); err != nil {
			logger.Error().Err(err).Msg("close libp2p host")
		}
	}()

	broadcaster, err := network.NewGossipBroadcaster(ctx, logger, host)
	if err != nil {
		return err
	}

	slotClock := slotting.NewTickerClock(logger, clock.New(), slotting.Schedule{
		GenesisTime:   genesis,
		SlotDuration:  c.Duration("slot-duration"),
		SlotsPerEpoch: cfg.SlotsPerEpoch,
	})

	detector, err := security.NewDetector(logger, cfg, variant, slotClock, store, id, broadcaster)
	if err != nil {
		return err
	}
	detector.Start()

	if addr := c.String("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	slotClock.Run(ctx)
	logger.Info().Msg("shutting down")
	return nil
}
