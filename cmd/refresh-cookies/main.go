package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaki95/whats-this-id/config"
	"github.com/jaki95/whats-this-id/internal/browser"
	"github.com/jaki95/whats-this-id/internal/profile"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := profile.NewStore(cfg.Profile.Dir)
	chrome := browser.NewChrome(cfg.Profile.BrowserCandidates, cfg.Profile.TargetURL)
	refresher := profile.NewRefresher(store, chrome, cfg.Profile.TargetURL, cfg.Profile.ConfirmURL)

	copied, err := refresher.Refresh(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrNoBrowser) {
			fmt.Fprintln(os.Stderr, "No compatible browser found. Install Chromium or Chrome, or point WHATS_THIS_ID_BROWSER at one.")
		}
		slog.Error("Session refresh failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Session refresh complete: %d artifact(s) copied into %s\n", copied, store.Root())
}
