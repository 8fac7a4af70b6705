package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jaki95/whats-this-id/config"
	"github.com/jaki95/whats-this-id/internal/backend"
	"github.com/jaki95/whats-this-id/internal/cookies"
	"github.com/jaki95/whats-this-id/internal/google"
	"github.com/jaki95/whats-this-id/internal/metadata"
	"github.com/jaki95/whats-this-id/internal/profile"
	"github.com/jaki95/whats-this-id/internal/progress"
	"github.com/jaki95/whats-this-id/internal/soundcloud"
	"github.com/jaki95/whats-this-id/internal/storage"
	"github.com/jaki95/whats-this-id/internal/tracklist"
)

const totalSteps = 4

type options struct {
	source        string
	setURL        string
	fileExtension string
	maxWorkers    int
	assumeYes     bool
}

func main() {
	source := flag.String("tracklist", "", "Tracklist URL, file, or free-text search query (required)")
	setURL := flag.String("set-url", "", "URL of the DJ set audio (resolved via search when omitted)")
	fileExtension := flag.String("ext", "", "Output file extension (defaults from config)")
	maxWorkers := flag.Int("workers", 0, "Maximum concurrent processing tasks (defaults from config)")
	assumeYes := flag.Bool("y", false, "Skip the confirmation prompt")
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "Missing required flag: -tracklist")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		source:        *source,
		setURL:        *setURL,
		fileExtension: *fileExtension,
		maxWorkers:    *maxWorkers,
		assumeYes:     *assumeYes,
	}
	if opts.fileExtension == "" {
		opts.fileExtension = cfg.FileExtension
	}
	if opts.maxWorkers <= 0 {
		opts.maxWorkers = cfg.MaxConcurrentTasks
	}

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("Processing failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	var searchClient google.Client
	if client, err := google.NewGoogleClient(cfg.Search.GoogleAPIKey, cfg.Search.SearchEngines); err == nil {
		searchClient = client
	} else if opts.setURL == "" {
		return fmt.Errorf("a search client is needed to resolve the set audio: %w", err)
	} else {
		slog.Warn("Search client unavailable, direct URLs only", "error", err)
	}

	profileStore := profile.NewStore(cfg.Profile.Dir)
	cookieSource := cookies.NewReader(profileStore.CookiesPath())
	importer := tracklist.NewDefaultImporter(searchClient, cookieSource, cfg.Search.CacheDir, cfg.Search.CacheTTL())

	fmt.Printf("[1/%d] Importing tracklist\n", totalSteps)
	tl, err := importer.Import(ctx, opts.source)
	if err != nil {
		return fmt.Errorf("failed to import tracklist: %w", err)
	}

	if tl.Artist == "" || tl.Year == 0 {
		meta := metadata.NewExtractor(cfg.Metadata.Model).Extract(ctx, tl.Name)
		if tl.Artist == "" {
			tl.Artist = meta.Artist
		}
		if tl.Year == 0 {
			tl.Year = meta.Year
		}
	}
	fmt.Printf("  %s — %s (%d tracks)\n", tl.Artist, tl.Name, len(tl.Tracks))

	fmt.Printf("[2/%d] Resolving set audio\n", totalSteps)
	setURL := opts.setURL
	if setURL == "" {
		query := strings.TrimSpace(tl.Artist + " " + tl.Name)
		results, err := soundcloud.NewFinder(searchClient).Search(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to find set audio: %w", err)
		}
		if len(results) == 0 {
			return fmt.Errorf("no audio source found for %q; pass one with -set-url", query)
		}
		setURL = results[0].URL
	}
	fmt.Printf("  %s\n", setURL)

	if !opts.assumeYes && !confirm(os.Stdin) {
		fmt.Println("Aborted.")
		return nil
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.PollInterval(), cfg.Backend.WaitTimeout())
	if err := backendClient.Health(ctx); err != nil {
		return err
	}

	req, err := backend.NewRequest(setURL, *tl, opts.fileExtension, opts.maxWorkers)
	if err != nil {
		return err
	}

	jobID, err := backendClient.ProcessSet(ctx, req)
	if err != nil {
		return err
	}

	bar := progress.NewJobBar(progress.StepDescription(3, totalSteps, "Processing set..."))
	_, err = backendClient.WaitForCompletion(ctx, jobID, func(status *backend.Status) {
		_ = bar.Set(int(status.Progress))
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Println()

	archive, err := backendClient.DownloadArchive(ctx, jobID)
	if err != nil {
		return err
	}
	defer archive.Body.Close()

	archiveStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer archiveStore.Close()

	downloadBar := progress.NewDownloadBar(archive.Size, progress.StepDescription(4, totalSteps, "Downloading archive..."))
	location, err := archiveStore.SaveArchive(ctx, archive.Name, io.TeeReader(archive.Body, downloadBar))
	if err != nil {
		return fmt.Errorf("failed to store archive: %w", err)
	}
	if _, err := archiveStore.SaveTracklist(ctx, tl.Name, tl); err != nil {
		slog.Warn("Failed to store tracklist document", "error", err)
	}

	fmt.Printf("\nSaved %s\n", location)
	return nil
}

func confirm(in io.Reader) bool {
	fmt.Print("Submit for processing? [y/N]: ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
