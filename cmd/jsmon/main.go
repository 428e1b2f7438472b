// Package main provides the jsmon CLI: a monitor for remote JavaScript
// files that fingerprints every fetched version, keeps a content-addressed
// archive plus a per-URL version history, and reports changes with unified
// and side-by-side diffs, optional AI analysis, and chat notifications.
//
// Configuration comes from the environment (JSMON_* variables, with a .env
// file honored via godotenv); command-line flags override it. The default
// invocation runs a single scan cycle and exits; -interval keeps scanning.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"jsmon/internal/config"
	"jsmon/internal/diff"
	"jsmon/internal/fetch"
	"jsmon/internal/ledger"
	"jsmon/internal/meta"
	"jsmon/internal/monitor"
	"jsmon/internal/notify"
	"jsmon/internal/store"
	"jsmon/internal/summarize"
	"jsmon/internal/targets"
)

// options is the command-line surface. Zero values mean "not set"; anything
// set here overrides the corresponding environment variable.
type options struct {
	targetsDir string
	dataDir    string
	workers    int
	backend    string
	once       bool
	interval   time.Duration
	version    bool
}

// parseFlags parses args (without the program name). Kept separate from
// main so tests can exercise the flag surface.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("jsmon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.targetsDir, "targets", "", "directory of URL list files (overrides JSMON_TARGETS_DIR)")
	fs.StringVar(&o.dataDir, "data-dir", "", "content archive directory (overrides JSMON_DATA_DIR)")
	fs.IntVar(&o.workers, "workers", 0, "concurrent resource checks (overrides JSMON_WORKERS)")
	fs.StringVar(&o.backend, "store", "", "storage backend: fs or badger (overrides JSMON_STORE_BACKEND)")
	fs.BoolVar(&o.once, "once", false, "run a single scan cycle even when -interval is set")
	fs.DurationVar(&o.interval, "interval", 0, "rescan interval; 0 runs once and exits")
	fs.BoolVar(&o.version, "version", false, "print build information and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

// applyFlags overlays set flags onto the environment-derived config.
func applyFlags(cfg *config.Config, o options) {
	if o.targetsDir != "" {
		cfg.TargetsDir = o.targetsDir
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.backend != "" {
		cfg.StoreBackend = o.backend
	}
}

// openStore selects the configured backing.
func openStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendBadger:
		return store.NewBadgerStore(store.BadgerConfig{
			Path:   filepath.Join(cfg.DataDir, "badger"),
			Logger: log,
		})
	default:
		return store.NewFSStore(cfg.DataDir)
	}
}

// buildChannels constructs the enabled notification channels.
func buildChannels(cfg config.Config) ([]notify.Channel, error) {
	var channels []notify.Channel
	if cfg.NotifyTelegram {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram channel: %w", err)
		}
		channels = append(channels, tg)
	}
	if cfg.NotifySlack {
		sl, err := notify.NewSlack(cfg.SlackToken, cfg.SlackChannelID)
		if err != nil {
			return nil, fmt.Errorf("slack channel: %w", err)
		}
		channels = append(channels, sl)
	}
	return channels, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the os.Exit, so tests can drive it. Exit code 0 means
// the requested scans completed (individual resource failures included);
// 1 means jsmon could not start or was misconfigured.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, meta.String())
		return 0
	}

	cfg := config.FromEnv()
	applyFlags(&cfg, opts)

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	st, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	led, err := ledger.Open(cfg.LedgerFile)
	if err != nil {
		log.Error("failed to open ledger", "file", cfg.LedgerFile, "error", err)
		return 1
	}

	var summarizer monitor.Summarizer
	if cfg.AutoSummaries {
		auditDir := ""
		if cfg.LogAIResponses {
			auditDir = cfg.AILogDir
		}
		s, err := summarize.New(summarize.Config{
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			AuditDir: auditDir,
		})
		if err != nil {
			log.Error("failed to configure summarizer", "error", err)
			return 1
		}
		summarizer = s
	}

	channels, err := buildChannels(cfg)
	if err != nil {
		log.Error("failed to configure notifications", "error", err)
		return 1
	}
	notifier := notify.New(log, channels...)

	scanner, err := monitor.New(monitor.Config{
		Store:      st,
		Ledger:     led,
		Fetcher:    fetch.NewClient(cfg.FetchTimeout),
		Differ:     diff.NewEngine(st),
		Summarizer: summarizer,
		Notifier:   notifier,
		Options: monitor.Options{
			Workers:       cfg.Workers,
			MaxDiffSize:   cfg.MaxDiffSize,
			AutoSummaries: cfg.AutoSummaries,
		},
		Logger: log,
	})
	if err != nil {
		log.Error("failed to build scanner", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", "build", meta.String(),
		"backend", cfg.StoreBackend, "workers", cfg.Workers,
		"channels", notifier.Channels(), "summaries", cfg.AutoSummaries)

	scan := func() error {
		urls, err := targets.Load(cfg.TargetsDir)
		if err != nil {
			return fmt.Errorf("load targets from %s: %w", cfg.TargetsDir, err)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no monitored URLs found under %s", cfg.TargetsDir)
		}
		scanner.Run(ctx, urls)
		return nil
	}

	// An empty or unreadable targets directory on the first cycle is a
	// configuration problem, not a scan result.
	if err := scan(); err != nil {
		log.Error("scan aborted", "error", err)
		return 1
	}
	if opts.once || opts.interval <= 0 {
		return 0
	}

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return 0
		case <-ticker.C:
			if err := scan(); err != nil {
				log.Error("scan skipped", "error", err)
			}
		}
	}
}
