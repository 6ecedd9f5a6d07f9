// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/secretballot/ballot"
	"github.com/danielhkuo/secretballot/cliparse"
	"github.com/danielhkuo/secretballot/db"
	"github.com/danielhkuo/secretballot/format"
	"github.com/danielhkuo/secretballot/handlers"
	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Open the outcome archive and create the schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("database setup failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	archive := db.NewArchive(dbConn)
	mem := messaging.NewMemory()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	coord, err := ballot.New(ballotConfig(cfg), mem, format.Builder{},
		ballot.WithArchive(archive),
		ballot.WithRegisterer(registry),
		ballot.WithLogger(slog.Default()),
	)
	if err != nil {
		slog.Error("coordinator setup failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(router.Services{
		Coordinator: coord,
		Rooms:       handlers.MemoryRooms(mem),
		Archive:     archive,
		Inboxes:     mem,
		Gatherer:    registry,
	}, cfg)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "window", cfg.VoteWindow)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Open votes are abandoned, not finalized
	coord.Close()
	if n := coord.OpenVotes(); n > 0 {
		slog.Warn("open votes abandoned at shutdown", "count", n)
	}
}

// ballotConfig maps server settings onto the coordinator. A zero render
// interval turns pacing off.
func ballotConfig(cfg cliparse.Config) ballot.Config {
	c := ballot.Config{
		Window:         cfg.VoteWindow,
		FanoutLimit:    cfg.FanoutLimit,
		RenderInterval: cfg.RenderInterval,
	}
	if c.RenderInterval == 0 {
		c.RenderInterval = -1
	}
	return c
}
