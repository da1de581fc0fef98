package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	logpkg "festflow/common/logger"
	"festflow/internal/config"
	"festflow/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	defaults := seed.DefaultOptions()

	var baseURL = flag.String("api", cfg.Seed.APIBaseURL, "festflow API base URL (default: SEED_API_BASE_URL)")
	var teams = flag.Int("teams", defaults.TeamsPerEvent, "Teams to register per event")
	var capacity = flag.Int("capacity", defaults.RoomCapacity, "Max capacity of each seeded room")
	var roomsPerBlock = flag.Int("rooms-per-block", defaults.RoomsPerBlock, "Rooms per hostel block")
	var randSeed = flag.Uint64("seed", defaults.RandSeed, "Random seed for generated names and team sizes")
	var timeout = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	logger, err := logpkg.NewLogger(cfg.Log.Level, "console", "festflow-seed")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	opts := defaults
	opts.TeamsPerEvent = *teams
	opts.RoomCapacity = *capacity
	opts.RoomsPerBlock = *roomsPerBlock
	opts.RandSeed = *randSeed

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Seeding festflow", zap.String("api", *baseURL))
	client := seed.NewClient(*baseURL, *timeout, logger)
	sum, err := seed.NewSeeder(client, opts, logger).Run(ctx)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Seeding complete",
		zap.Int("colleges", sum.Colleges),
		zap.Int("clubs", sum.Clubs),
		zap.Int("teams_created", sum.TeamsCreated),
		zap.Int("teams_rejected", sum.TeamsRejected),
	)
}
