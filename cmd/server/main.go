package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaki95/whats-this-id/config"
	"github.com/jaki95/whats-this-id/internal/backend"
	"github.com/jaki95/whats-this-id/internal/cookies"
	"github.com/jaki95/whats-this-id/internal/google"
	"github.com/jaki95/whats-this-id/internal/profile"
	"github.com/jaki95/whats-this-id/internal/server"
	"github.com/jaki95/whats-this-id/internal/soundcloud"
	"github.com/jaki95/whats-this-id/internal/tracklist"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	googleClient, err := google.NewGoogleClient(cfg.Search.GoogleAPIKey, cfg.Search.SearchEngines)
	if err != nil {
		slog.Error("Failed to create search client", "error", err)
		os.Exit(1)
	}

	store := profile.NewStore(cfg.Profile.Dir)
	cookieSource := cookies.NewReader(store.CookiesPath())

	importer := tracklist.NewDefaultImporter(googleClient, cookieSource, cfg.Search.CacheDir, cfg.Search.CacheTTL())
	searcher := tracklist.New1001TracklistsSearcher(googleClient, importer)
	finder := soundcloud.NewFinder(googleClient)

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.PollInterval(), cfg.Backend.WaitTimeout())

	srv, err := server.New(cfg, backendClient, searcher, importer, finder)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting whats-this-id server", "port", cfg.Server.Port, "backend", backendClient.BaseURL())
	if err := srv.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
