// Package config resolves the runtime configuration from the environment.
// A .env file in the working directory is honored through the godotenv
// autoload import in cmd/jsmon. The Config struct is built once at startup
// and passed down explicitly; nothing in this package is a singleton.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable via JSMON_STORE_BACKEND.
const (
	BackendFS     = "fs"
	BackendBadger = "badger"
)

// Config is the full recognized option surface.
type Config struct {
	TargetsDir string // JSMON_TARGETS_DIR, default "targets"
	DataDir    string // JSMON_DATA_DIR, default "monitored_files"
	LedgerFile string // JSMON_LEDGER_FILE, default "jsmon.json"

	StoreBackend string        // JSMON_STORE_BACKEND: fs | badger
	Workers      int           // JSMON_WORKERS, default 1 (sequential)
	FetchTimeout time.Duration // JSMON_FETCH_TIMEOUT, default 30s

	// MaxDiffSize caps the unified diff (in bytes) handed to the
	// summarizer; larger diffs are truncated with a marker.
	MaxDiffSize int // JSMON_MAX_DIFF_SIZE, default 50000

	AutoSummaries  bool   // JSMON_AUTO_SUMMARIES, default true
	LogAIResponses bool   // JSMON_LOG_AI_RESPONSES, default true
	AILogDir       string // JSMON_AI_LOG_DIR, default "logs/ai_conversations"

	OpenAIAPIKey  string // JSMON_OPENAI_API_KEY
	OpenAIBaseURL string // JSMON_OPENAI_BASE_URL (optional)
	OpenAIModel   string // JSMON_OPENAI_MODEL (optional)

	NotifyTelegram bool   // JSMON_NOTIFY_TELEGRAM, default false
	TelegramToken  string // JSMON_TELEGRAM_TOKEN
	TelegramChatID string // JSMON_TELEGRAM_CHAT_ID

	NotifySlack    bool   // JSMON_NOTIFY_SLACK, default false
	SlackToken     string // JSMON_SLACK_TOKEN
	SlackChannelID string // JSMON_SLACK_CHANNEL_ID

	LogLevel slog.Level // JSMON_LOG_LEVEL: debug | info | warn | error
}

// FromEnv reads every recognized option, applying defaults.
func FromEnv() Config {
	return Config{
		TargetsDir:     envStr("JSMON_TARGETS_DIR", "targets"),
		DataDir:        envStr("JSMON_DATA_DIR", "monitored_files"),
		LedgerFile:     envStr("JSMON_LEDGER_FILE", "jsmon.json"),
		StoreBackend:   envStr("JSMON_STORE_BACKEND", BackendFS),
		Workers:        envInt("JSMON_WORKERS", 1),
		FetchTimeout:   envDuration("JSMON_FETCH_TIMEOUT", 30*time.Second),
		MaxDiffSize:    envInt("JSMON_MAX_DIFF_SIZE", 50000),
		AutoSummaries:  envBool("JSMON_AUTO_SUMMARIES", true),
		LogAIResponses: envBool("JSMON_LOG_AI_RESPONSES", true),
		AILogDir:       envStr("JSMON_AI_LOG_DIR", "logs/ai_conversations"),
		OpenAIAPIKey:   envStr("JSMON_OPENAI_API_KEY", ""),
		OpenAIBaseURL:  envStr("JSMON_OPENAI_BASE_URL", ""),
		OpenAIModel:    envStr("JSMON_OPENAI_MODEL", ""),
		NotifyTelegram: envBool("JSMON_NOTIFY_TELEGRAM", false),
		TelegramToken:  envStr("JSMON_TELEGRAM_TOKEN", ""),
		TelegramChatID: envStr("JSMON_TELEGRAM_CHAT_ID", ""),
		NotifySlack:    envBool("JSMON_NOTIFY_SLACK", false),
		SlackToken:     envStr("JSMON_SLACK_TOKEN", ""),
		SlackChannelID: envStr("JSMON_SLACK_CHANNEL_ID", ""),
		LogLevel:       envLevel("JSMON_LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate aggregates every configuration problem into a single error.
func (c *Config) Validate() error {
	var errs errlist

	if strings.TrimSpace(c.TargetsDir) == "" {
		errs.add("targets directory must be non-empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs.add("data directory must be non-empty")
	}
	if strings.TrimSpace(c.LedgerFile) == "" {
		errs.add("ledger file must be non-empty")
	}
	if c.StoreBackend != BackendFS && c.StoreBackend != BackendBadger {
		errs.add("store backend must be %q or %q (got %q)", BackendFS, BackendBadger, c.StoreBackend)
	}
	if c.Workers < 1 {
		errs.add("workers must be >= 1 (got %d)", c.Workers)
	}
	if c.FetchTimeout <= 0 {
		errs.add("fetch timeout must be positive (got %s)", c.FetchTimeout)
	}
	if c.MaxDiffSize < 0 {
		errs.add("max diff size must be >= 0 (got %d)", c.MaxDiffSize)
	}
	if c.NotifyTelegram && (c.TelegramToken == "" || c.TelegramChatID == "") {
		errs.add("telegram notifications enabled but token or chat id is missing")
	}
	if c.NotifySlack && (c.SlackToken == "" || c.SlackChannelID == "") {
		errs.add("slack notifications enabled but token or channel id is missing")
	}
	if c.AutoSummaries && c.OpenAIAPIKey == "" {
		errs.add("auto summaries enabled but JSMON_OPENAI_API_KEY is not set")
	}

	return errs.err()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envLevel(key string, def slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

// errlist aggregates validation problems so the user sees all of them at
// once instead of fixing one per run.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(e.msgs, "\n  - "))
}
