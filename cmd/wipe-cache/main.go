package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jaki95/whats-this-id/config"
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

	store := profile.NewStore(cfg.Profile.Dir)

	fmt.Printf("Wiping browser profile at %s\n", store.Root())
	if err := store.Wipe(); err != nil {
		slog.Error("Failed to wipe browser profile", "error", err)
		os.Exit(1)
	}
	fmt.Println("Browser profile is empty. Run refresh-cookies to capture a new session.")
}
