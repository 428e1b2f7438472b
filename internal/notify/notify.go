// Package notify dispatches scan events to chat channels. Delivery is
// fire-and-report: a channel failure is logged with the resource identity
// and never interrupts the scan.
package notify

import (
	"context"
	"log/slog"
)

// Change carries everything a channel needs to report a detected change.
type Change struct {
	URL          string
	RiskLevel    string
	ShortSummary string
	DiffHTML     []byte // side-by-side artifact, attached as diff.html
	SummaryHTML  []byte // analysis rendering, attached as summary.html
}

// Channel is one delivery target (Telegram, Slack, ...).
type Channel interface {
	Name() string
	SendNew(ctx context.Context, url, summary string) error
	SendChange(ctx context.Context, change Change) error
}

// Notifier fans events out to all configured channels.
type Notifier struct {
	channels []Channel
	log      *slog.Logger
}

// New returns a Notifier over the given channels. A Notifier with no
// channels is valid and silently drops events.
func New(log *slog.Logger, channels ...Channel) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{channels: channels, log: log}
}

// Channels reports how many delivery targets are configured.
func (n *Notifier) Channels() int { return len(n.channels) }

// NotifyNew announces a newly enrolled resource.
func (n *Notifier) NotifyNew(ctx context.Context, url, summary string) {
	for _, ch := range n.channels {
		if err := ch.SendNew(ctx, url, summary); err != nil {
			n.log.Error("new-resource notification failed",
				"channel", ch.Name(), "url", url, "error", err)
		}
	}
}

// NotifyChange announces a detected change with its artifacts.
func (n *Notifier) NotifyChange(ctx context.Context, change Change) {
	for _, ch := range n.channels {
		if err := ch.SendChange(ctx, change); err != nil {
			n.log.Error("change notification failed",
				"channel", ch.Name(), "url", change.URL, "error", err)
		}
	}
}

// riskEmoji prefixes messages by severity.
func riskEmoji(level string) string {
	switch level {
	case "HIGH":
		return "🚨"
	case "MEDIUM":
		return "⚠️"
	default:
		return "ℹ️"
	}
}
