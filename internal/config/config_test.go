package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var allVars = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "FACEBOOK_PAGES",
	"CHECK_INTERVAL_MINUTES", "CHECK_JITTER", "TIMEZONE",
	"NIGHT_SLEEP_START", "NIGHT_SLEEP_END", "BOT_LANGUAGE",
	"STORE_PATH", "ARCHIVE_PATH", "MAX_POSTS", "MAX_IMAGES",
	"MIN_POST_TEXT", "MIN_CLEANED_TEXT", "STORE_MAX_IDS",
	"LOG_LEVEL", "DEBUG",
}

func TestLoad(t *testing.T) {
	valid := map[string]string{
		"TELEGRAM_BOT_TOKEN": "test-token",
		"TELEGRAM_CHAT_ID":   "12345",
		"FACEBOOK_PAGES":     "https://www.facebook.com/somepage",
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "minimal config, defaults applied",
			env:  valid,
			want: &Config{
				TelegramBotToken:     "test-token",
				TelegramChatID:       12345,
				Pages:                []string{"https://www.facebook.com/somepage"},
				CheckIntervalMinutes: 30,
				CheckJitter:          0.3,
				TimezoneName:         "UTC",
				Language:             "en",
				StorePath:            "./data/sent-posts.json",
				ArchivePath:          "./data/archive.db",
				MaxPosts:             10,
				MaxImages:            4,
				MinPostText:          30,
				MinCleanedText:       10,
				StoreMaxIDs:          1000,
				LogLevel:             "info",
			},
		},
		{
			name: "all values set",
			env: merge(valid, map[string]string{
				"FACEBOOK_PAGES":         "https://www.facebook.com/a, https://facebook.com/b",
				"CHECK_INTERVAL_MINUTES": "15",
				"CHECK_JITTER":           "0.5",
				"TIMEZONE":               "Europe/Lisbon",
				"NIGHT_SLEEP_START":      "23",
				"NIGHT_SLEEP_END":        "7",
				"BOT_LANGUAGE":           "pt",
				"STORE_PATH":             "/tmp/ids.json",
				"ARCHIVE_PATH":           "none",
				"MAX_POSTS":              "5",
				"MAX_IMAGES":             "2",
				"MIN_POST_TEXT":          "20",
				"MIN_CLEANED_TEXT":       "5",
				"STORE_MAX_IDS":          "500",
				"LOG_LEVEL":              "debug",
				"DEBUG":                  "1",
			}),
			want: &Config{
				TelegramBotToken:     "test-token",
				TelegramChatID:       12345,
				Pages:                []string{"https://www.facebook.com/a", "https://facebook.com/b"},
				CheckIntervalMinutes: 15,
				CheckJitter:          0.5,
				TimezoneName:         "Europe/Lisbon",
				NightSleepStart:      23,
				NightSleepEnd:        7,
				Language:             "pt",
				StorePath:            "/tmp/ids.json",
				ArchivePath:          "",
				MaxPosts:             5,
				MaxImages:            2,
				MinPostText:          20,
				MinCleanedText:       5,
				StoreMaxIDs:          500,
				LogLevel:             "debug",
				Debug:                true,
			},
		},
		{
			name:    "missing token",
			env:     map[string]string{"TELEGRAM_CHAT_ID": "1", "FACEBOOK_PAGES": "https://www.facebook.com/p"},
			wantErr: true,
		},
		{
			name:    "missing chat id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "FACEBOOK_PAGES": "https://www.facebook.com/p"},
			wantErr: true,
		},
		{
			name:    "non-numeric chat id",
			env:     merge(valid, map[string]string{"TELEGRAM_CHAT_ID": "abc"}),
			wantErr: true,
		},
		{
			name:    "no pages",
			env:     merge(valid, map[string]string{"FACEBOOK_PAGES": " , "}),
			wantErr: true,
		},
		{
			name:    "off-platform page url",
			env:     merge(valid, map[string]string{"FACEBOOK_PAGES": "https://example.com/page"}),
			wantErr: true,
		},
		{
			name:    "plain http page url",
			env:     merge(valid, map[string]string{"FACEBOOK_PAGES": "http://www.facebook.com/page"}),
			wantErr: true,
		},
		{
			name:    "zero interval",
			env:     merge(valid, map[string]string{"CHECK_INTERVAL_MINUTES": "0"}),
			wantErr: true,
		},
		{
			name:    "negative interval",
			env:     merge(valid, map[string]string{"CHECK_INTERVAL_MINUTES": "-5"}),
			wantErr: true,
		},
		{
			name:    "jitter above one",
			env:     merge(valid, map[string]string{"CHECK_JITTER": "1.5"}),
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     merge(valid, map[string]string{"TIMEZONE": "Mars/Olympus"}),
			wantErr: true,
		},
		{
			name:    "sleep hour out of range",
			env:     merge(valid, map[string]string{"NIGHT_SLEEP_START": "24"}),
			wantErr: true,
		},
		{
			name:    "unsupported language",
			env:     merge(valid, map[string]string{"BOT_LANGUAGE": "de"}),
			wantErr: true,
		},
		{
			name:    "zero store capacity",
			env:     merge(valid, map[string]string{"STORE_MAX_IDS": "0"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range allVars {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(Config{}, "Timezone")); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
			if got.Timezone == nil {
				t.Error("Timezone location not loaded")
			}
		})
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
