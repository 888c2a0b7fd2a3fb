package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/partyshare-api/internal/claims"
	"github.com/gravadigital/partyshare-api/internal/config"
	"github.com/gravadigital/partyshare-api/internal/location"
	"github.com/gravadigital/partyshare-api/internal/logger"
	"github.com/gravadigital/partyshare-api/internal/photos"
	"github.com/gravadigital/partyshare-api/internal/place"
	"github.com/gravadigital/partyshare-api/internal/server"
	"github.com/gravadigital/partyshare-api/internal/store"
	"github.com/gravadigital/partyshare-api/internal/store/memory"
	"github.com/gravadigital/partyshare-api/internal/store/postgres"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	var eventStore store.Store
	switch cfg.Store.Backend {
	case "memory":
		log.Warn("Using in-memory store; data will not survive a restart")
		eventStore = memory.New()
	default:
		db, err := postgres.Connect(cfg)
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := postgres.RunMigrations(db); err != nil {
			log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		pgStore := postgres.New(db, cfg.GetDatabaseURL(), cfg.Store.PollInterval)
		defer pgStore.Stop()
		eventStore = pgStore
	}

	engine := sync.New(eventStore)
	if err := engine.Start(); err != nil {
		log.Error("Failed to start sync engine", "error", err)
		os.Exit(1)
	}
	defer engine.Stop()

	manager := claims.NewManager(eventStore, engine)

	directory := place.NewCached(place.NewStaticDirectory())

	var photoStore *photos.Store
	if cfg.Photos.Endpoint != "" {
		ps, err := photos.New(cfg)
		if err != nil {
			log.Warn("Photo storage unavailable, photo routes disabled", "error", err)
		} else if err := ps.EnsureBucket(context.Background()); err != nil {
			log.Warn("Photo bucket unavailable, photo routes disabled", "error", err)
		} else {
			photoStore = ps
		}
	}

	srv := server.New(cfg, engine, manager, directory, location.Static{}, photoStore)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("Received shutdown signal", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
