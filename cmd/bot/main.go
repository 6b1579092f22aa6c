package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"fb_bot/internal/archive"
	"fb_bot/internal/config"
	"fb_bot/internal/normalize"
	"fb_bot/internal/scheduler"
	"fb_bot/internal/scrape"
	"fb_bot/internal/store"
	"fb_bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	for _, p := range []string{cfg.StorePath, cfg.ArchivePath} {
		if p == "" {
			continue
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				log.Error("create data directory", "path", dir, "error", err)
				os.Exit(1)
			}
		}
	}

	dedup := store.Open(cfg.StorePath, cfg.StoreMaxIDs, log)
	log.Info("loaded dedup store", "path", cfg.StorePath, "ids", dedup.Len())

	var arc scheduler.Archive
	if cfg.ArchivePath != "" {
		a, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			log.Error("open archive", "path", cfg.ArchivePath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = a.Close() }()
		if n, err := a.Count(context.Background()); err == nil {
			log.Info("opened archive", "path", cfg.ArchivePath, "delivered_posts", n)
		}
		arc = a
	}

	sender, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Error("create telegram sender", "error", err)
		os.Exit(1)
	}

	norm := normalize.New(cfg.Language)
	extractor := scrape.NewExtractor(scrape.Limits{
		MinPostText:    cfg.MinPostText,
		MinCleanedText: cfg.MinCleanedText,
		MaxImages:      cfg.MaxImages,
	}, norm, scrape.NewFullTextFetcher(""), log)

	scraper, err := scrape.NewScraper(extractor, scrape.Options{
		MaxPosts: cfg.MaxPosts,
		Language: cfg.Language,
		Debug:    cfg.Debug,
	}, log)
	if err != nil {
		log.Error("start scraper", "error", err)
		os.Exit(1)
	}
	defer func() { _ = scraper.Close() }()

	sched := scheduler.New(cfg, scraper, sender, dedup, arc, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting relay",
		"pages", len(cfg.Pages),
		"interval_minutes", cfg.CheckIntervalMinutes,
		"jitter", cfg.CheckJitter,
		"timezone", cfg.TimezoneName)
	if cfg.NightSleepStart != cfg.NightSleepEnd {
		log.Info("night sleep enabled", "start_hour", cfg.NightSleepStart, "end_hour", cfg.NightSleepEnd)
	}

	sched.Run(ctx)

	log.Info("relay stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
