// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"fb_bot/internal/normalize"
)

// Config holds the application configuration. Invalid values reject
// startup with a descriptive error; nothing is silently clamped.
type Config struct {
	TelegramBotToken string
	TelegramChatID   int64

	// Pages are the monitored page URLs.
	Pages []string

	CheckIntervalMinutes int
	CheckJitter          float64
	Timezone             *time.Location
	TimezoneName         string

	// NightSleepStart/End bound the nightly quiet window in local
	// hours (0-23). Equal values disable it.
	NightSleepStart int
	NightSleepEnd   int

	Language string

	StorePath string

	// ArchivePath is the delivered-post archive database; empty
	// (ARCHIVE_PATH=none) disables archiving.
	ArchivePath string

	MaxPosts       int
	MaxImages      int
	MinPostText    int
	MinCleanedText int
	StoreMaxIDs    int

	LogLevel string
	Debug    bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		StorePath:   envDefault("STORE_PATH", "./data/sent-posts.json"),
		ArchivePath: envDefault("ARCHIVE_PATH", "./data/archive.db"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),
		Debug:       os.Getenv("DEBUG") == "1",
	}
	if cfg.ArchivePath == "none" {
		cfg.ArchivePath = ""
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if chatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	var err error
	if cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64); err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer, got %q", chatID)
	}

	for _, s := range strings.Split(os.Getenv("FACEBOOK_PAGES"), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !isPageURL(s) {
			return nil, fmt.Errorf("invalid FACEBOOK_PAGES URL %q (must be https://www.facebook.com/...)", s)
		}
		cfg.Pages = append(cfg.Pages, s)
	}
	if len(cfg.Pages) == 0 {
		return nil, fmt.Errorf("FACEBOOK_PAGES must contain at least one URL")
	}

	if cfg.CheckIntervalMinutes, err = envInt("CHECK_INTERVAL_MINUTES", 30); err != nil {
		return nil, err
	}
	if cfg.CheckIntervalMinutes <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL_MINUTES must be positive, got %d", cfg.CheckIntervalMinutes)
	}

	if cfg.CheckJitter, err = envFloat("CHECK_JITTER", 0.3); err != nil {
		return nil, err
	}
	if cfg.CheckJitter < 0 || cfg.CheckJitter > 1 {
		return nil, fmt.Errorf("CHECK_JITTER must be between 0 and 1, got %g", cfg.CheckJitter)
	}

	cfg.TimezoneName = envDefault("TIMEZONE", "UTC")
	if cfg.Timezone, err = time.LoadLocation(cfg.TimezoneName); err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE %q: %w", cfg.TimezoneName, err)
	}

	if cfg.NightSleepStart, err = envHour("NIGHT_SLEEP_START"); err != nil {
		return nil, err
	}
	if cfg.NightSleepEnd, err = envHour("NIGHT_SLEEP_END"); err != nil {
		return nil, err
	}

	cfg.Language = envDefault("BOT_LANGUAGE", normalize.FallbackLanguage)
	if !normalize.Supported(cfg.Language) {
		return nil, fmt.Errorf("unsupported BOT_LANGUAGE %q", cfg.Language)
	}

	intVars := []struct {
		name string
		dst  *int
		def  int
		min  int
	}{
		{"MAX_POSTS", &cfg.MaxPosts, 10, 1},
		{"MAX_IMAGES", &cfg.MaxImages, 4, 0},
		{"MIN_POST_TEXT", &cfg.MinPostText, 30, 1},
		{"MIN_CLEANED_TEXT", &cfg.MinCleanedText, 10, 1},
		{"STORE_MAX_IDS", &cfg.StoreMaxIDs, 1000, 1},
	}
	for _, v := range intVars {
		if *v.dst, err = envInt(v.name, v.def); err != nil {
			return nil, err
		}
		if *v.dst < v.min {
			return nil, fmt.Errorf("%s must be at least %d, got %d", v.name, v.min, *v.dst)
		}
	}

	return cfg, nil
}

func isPageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return u.Scheme == "https" && (host == "facebook.com" || host == "www.facebook.com")
}

func envDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func envFloat(name string, def float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func envHour(name string) (int, error) {
	v, err := envInt(name, 0)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 23 {
		return 0, fmt.Errorf("%s must be between 0 and 23, got %d", name, v)
	}
	return v, nil
}
