package summarize

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// auditEntry is the on-disk shape of one logged AI response.
type auditEntry struct {
	Timestamp    string          `json:"timestamp"`
	ResponseType string          `json:"response_type"`
	URL          string          `json:"js_url"`
	Fingerprint  string          `json:"file_hash"`
	Content      json.RawMessage `json:"content"`
}

// audit persists one AI response for debugging and review. Disabled when no
// audit directory is configured; failures are logged and swallowed so the
// audit trail never affects the scan.
func (s *Summarizer) audit(responseType, url, fp string, content json.RawMessage) {
	if s.auditDir == "" {
		return
	}
	now := time.Now().UTC()
	entry := auditEntry{
		Timestamp:    now.Format(time.RFC3339),
		ResponseType: responseType,
		URL:          url,
		Fingerprint:  fp,
		Content:      content,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Error("failed to encode AI audit entry", "error", err)
		return
	}
	if err := os.MkdirAll(s.auditDir, 0o755); err != nil {
		slog.Error("failed to create AI audit directory", "dir", s.auditDir, "error", err)
		return
	}
	name := responseType + "_" + fp + "_" + now.Format("20060102_150405") + ".json"
	if err := os.WriteFile(filepath.Join(s.auditDir, name), data, 0o644); err != nil {
		slog.Error("failed to write AI audit entry", "file", name, "error", err)
	}
}
