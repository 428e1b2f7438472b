// Package monitor runs the change-detection cycle: fetch every monitored
// URL, fingerprint the body, compare against the recorded history, persist
// new versions, and emit notifications with diff and analysis artifacts.
//
// Per-resource failures are isolated: one unreachable URL or broken AI call
// never aborts the scan of the others.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jsmon/internal/ledger"
	"jsmon/internal/notify"
	"jsmon/internal/store"
	"jsmon/internal/summarize"
	"jsmon/internal/textutil"
)

// ---------------------------------------------------------------------------
// collaborator contracts

// Fetcher retrieves the current bytes of a resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Differ renders the artifacts for a transition between two stored versions.
type Differ interface {
	Text(oldFP, newFP string) string
	HTML(oldFP, newFP string) string
}

// Summarizer is the optional AI collaborator. A nil Summarizer disables
// summaries and change analyses without changing detection behavior.
type Summarizer interface {
	Summarize(ctx context.Context, url, fp string, content []byte) (json.RawMessage, error)
	AnalyzeChange(ctx context.Context, url, fp, priorSummary, unifiedDiff string) (summarize.Analysis, json.RawMessage, error)
}

// Notifier is the optional delivery collaborator. A nil Notifier drops
// events.
type Notifier interface {
	NotifyNew(ctx context.Context, url, summary string)
	NotifyChange(ctx context.Context, change notify.Change)
}

// ---------------------------------------------------------------------------
// results

// Status classifies the outcome of checking one resource.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusNew       Status = "new"
	StatusChanged   Status = "changed"
	StatusFailed    Status = "failed"
)

// Result is the outcome of one resource check within a scan.
type Result struct {
	URL         string
	Status      Status
	Fingerprint string // current version, empty on fetch failure
	Previous    string // prior version, set for StatusChanged
	Err         error  // set for StatusFailed
}

// Tally counts results by status.
func Tally(results []Result) (unchanged, added, changed, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusUnchanged:
			unchanged++
		case StatusNew:
			added++
		case StatusChanged:
			changed++
		case StatusFailed:
			failed++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// scanner

// Options tune a Scanner.
type Options struct {
	// Workers bounds concurrent resource checks. Values below 1 mean
	// sequential.
	Workers int

	// MaxDiffSize caps the unified diff (in bytes) handed to the
	// summarizer. Zero means no cap. Stored artifacts are never truncated.
	MaxDiffSize int

	// AutoSummaries gates AI calls even when a Summarizer is present.
	AutoSummaries bool
}

// Config wires a Scanner. Store, Ledger, Fetcher and Differ are required;
// Summarizer and Notifier may be nil.
type Config struct {
	Store      store.Store
	Ledger     *ledger.Ledger
	Fetcher    Fetcher
	Differ     Differ
	Summarizer Summarizer
	Notifier   Notifier
	Options    Options
	Logger     *slog.Logger
}

// Scanner drives scan cycles over a fixed set of collaborators.
type Scanner struct {
	store      store.Store
	ledger     *ledger.Ledger
	fetcher    Fetcher
	differ     Differ
	summarizer Summarizer
	notifier   Notifier
	opts       Options
	log        *slog.Logger
}

// New validates cfg and returns a ready Scanner.
func New(cfg Config) (*Scanner, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("monitor: store is required")
	case cfg.Ledger == nil:
		return nil, errors.New("monitor: ledger is required")
	case cfg.Fetcher == nil:
		return nil, errors.New("monitor: fetcher is required")
	case cfg.Differ == nil:
		return nil, errors.New("monitor: differ is required")
	}
	if cfg.Options.Workers < 1 {
		cfg.Options.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scanner{
		store:      cfg.Store,
		ledger:     cfg.Ledger,
		fetcher:    cfg.Fetcher,
		differ:     cfg.Differ,
		summarizer: cfg.Summarizer,
		notifier:   cfg.Notifier,
		opts:       cfg.Options,
		log:        cfg.Logger,
	}, nil
}

// Run checks every URL once and returns one Result per URL, in input order.
// It never returns an error: per-resource failures are recorded in their
// Result.
func (s *Scanner) Run(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			results[i] = s.checkOne(ctx, url)
			return nil
		})
	}
	_ = g.Wait()

	unchanged, added, changed, failed := Tally(results)
	s.log.Info("scan complete",
		"resources", len(urls),
		"unchanged", unchanged, "new", added, "changed", changed, "failed", failed)
	return results
}

// checkOne runs the full pipeline for a single resource.
func (s *Scanner) checkOne(ctx context.Context, url string) Result {
	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.log.Error("fetch failed", "url", url, "error", err)
		return Result{URL: url, Status: StatusFailed, Err: err}
	}

	fp := store.Fingerprint(content)
	latest, seen := s.ledger.Latest(url)
	if seen && latest == fp {
		s.log.Debug("unchanged", "url", url, "fingerprint", fp)
		return Result{URL: url, Status: StatusUnchanged, Fingerprint: fp}
	}

	// Persist the version before touching history so the ledger never
	// references content that was not stored.
	if err := s.store.PutContent(fp, content); err != nil {
		s.log.Error("store content failed", "url", url, "fingerprint", fp, "error", err)
		return Result{URL: url, Status: StatusFailed, Fingerprint: fp, Err: err}
	}
	md := store.Metadata{
		URL:       url,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Size:      len(content),
	}
	if err := s.store.PutMetadata(fp, md); err != nil {
		s.log.Error("store metadata failed", "url", url, "fingerprint", fp, "error", err)
		return Result{URL: url, Status: StatusFailed, Fingerprint: fp, Err: err}
	}

	appended, err := s.ledger.Append(url, fp)
	if err != nil {
		s.log.Error("ledger append failed", "url", url, "fingerprint", fp, "error", err)
		return Result{URL: url, Status: StatusFailed, Fingerprint: fp, Err: err}
	}

	if !seen {
		s.handleNew(ctx, url, fp, content)
		return Result{URL: url, Status: StatusNew, Fingerprint: fp}
	}

	// Changed. A re-appearance of an old version (appended=false) is still
	// reported as a change; the history just gains no duplicate entry.
	if !appended {
		s.log.Info("resource reverted to a previously seen version",
			"url", url, "fingerprint", fp)
	}
	s.handleChange(ctx, url, latest, fp)
	return Result{URL: url, Status: StatusChanged, Fingerprint: fp, Previous: latest}
}

// handleNew enrolls a first-seen resource: optional AI summary, stored under
// the fingerprint, then a new-resource notification.
func (s *Scanner) handleNew(ctx context.Context, url, fp string, content []byte) {
	s.log.Info("new resource enrolled", "url", url, "fingerprint", fp, "size", len(content))

	var record json.RawMessage
	if s.summarizer != nil && s.opts.AutoSummaries {
		var err error
		record, err = s.summarizer.Summarize(ctx, url, fp, content)
		if err != nil {
			s.log.Error("summary generation failed", "url", url, "error", err)
			record = nil
		} else if err := s.store.PutSummary(fp, record); err != nil {
			s.log.Error("store summary failed", "url", url, "fingerprint", fp, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyNew(ctx, url, summarize.SummaryText(record))
	}
}

// handleChange builds the diff artifacts, runs the AI review, and delivers
// the change notification.
func (s *Scanner) handleChange(ctx context.Context, url, oldFP, newFP string) {
	s.log.Info("change detected", "url", url, "previous", oldFP, "current", newFP)

	textDiff := s.differ.Text(oldFP, newFP)
	analysis := s.analyze(ctx, url, newFP, textDiff)

	if s.notifier == nil {
		return
	}
	s.notifier.NotifyChange(ctx, notify.Change{
		URL:          url,
		RiskLevel:    analysis.RiskLevel,
		ShortSummary: analysis.ShortSummary,
		DiffHTML:     []byte(s.differ.HTML(oldFP, newFP)),
		SummaryHTML:  notify.RenderSummaryHTML(url, analysis.DetailedAnalysis),
	})
}

// analyze runs the AI change review over the (possibly truncated) unified
// diff. It always returns a usable Analysis; AI transport failures degrade
// to the UNKNOWN-risk fallback.
func (s *Scanner) analyze(ctx context.Context, url, fp, textDiff string) summarize.Analysis {
	if s.summarizer == nil || !s.opts.AutoSummaries {
		return summarize.Analysis{
			ShortSummary: "Change detected. AI analysis is disabled.",
			RiskLevel:    summarize.RiskUnknown,
		}
	}

	prior := "No initial summary available."
	if initial, ok := s.ledger.Initial(url); ok {
		if record, ok, err := s.store.GetSummary(initial); err == nil && ok {
			prior = string(record)
		}
	}

	truncated := textutil.Truncate(textDiff, s.opts.MaxDiffSize, "\n... [truncated]")
	analysis, record, err := s.summarizer.AnalyzeChange(ctx, url, fp, prior, truncated)
	if err != nil {
		s.log.Error("change analysis failed", "url", url, "error", err)
		return summarize.Analysis{
			ShortSummary: "Change detected, but the AI analysis request failed.",
			RiskLevel:    summarize.RiskUnknown,
			Error:        err.Error(),
		}
	}
	if err := s.store.PutSummary(fp, record); err != nil {
		s.log.Error("store analysis failed", "url", url, "fingerprint", fp, "error", err)
	}
	return analysis
}
