package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docnav/internal/api"
	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	state, err := config.LoadDisplayFile(cfg.DisplayFile)
	if err != nil {
		log.Warn("display file ignored", "path", cfg.DisplayFile, "error", err)
	}
	if cfg.MarkLines {
		state.Markers = true
	}
	display := config.NewDisplay(state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize sessions.
	sessions := session.NewManager(session.OptionsFromConfig(cfg), cfg.SessionTTL, log)
	sessions.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(sessions, display, commands.Default(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		sessions.Stop()
	}()

	log.Info("starting docnav", "port", cfg.Port, "debounce", cfg.Debounce, "session_ttl", cfg.SessionTTL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
