// Package ledger maintains the per-resource version history: an ordered,
// deduplicated sequence of fingerprints per monitored URL, in first-seen
// order. The full mapping is persisted as a single JSON document that is
// loaded whole at open time and rewritten whole (atomically) on every
// mutation.
//
// That makes Append O(total ledger size) per call — acceptable for hundreds
// to low thousands of resources, and a known scalability boundary beyond
// that.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Ledger is safe for concurrent use; all mutations are serialized internally
// because each one rewrites the whole persisted mapping.
type Ledger struct {
	path string

	mu   sync.Mutex
	seqs map[string][]string
}

// Open loads the ledger from path. A missing file is an empty ledger, not an
// error.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path must be non-empty")
	}
	l := &Ledger{path: path, seqs: make(map[string][]string)}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(b, &l.seqs); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", path, err)
	}
	return l, nil
}

// History returns a copy of the fingerprint sequence for url, oldest first.
// The result is empty for a resource never observed.
func (l *Ledger) History(url string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	seq := l.seqs[url]
	out := make([]string, len(seq))
	copy(out, seq)
	return out
}

// Initial returns the first fingerprint ever recorded for url.
func (l *Ledger) Initial(url string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seq := l.seqs[url]
	if len(seq) == 0 {
		return "", false
	}
	return seq[0], true
}

// Latest returns the most recent fingerprint recorded for url.
func (l *Ledger) Latest(url string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seq := l.seqs[url]
	if len(seq) == 0 {
		return "", false
	}
	return seq[len(seq)-1], true
}

// Append adds fp to the end of url's sequence and persists the whole
// mapping. A fingerprint already present anywhere in the sequence is never
// re-appended: a re-appearance of an old version leaves history untouched
// and returns appended=false.
func (l *Ledger) Append(url, fp string) (appended bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, h := range l.seqs[url] {
		if h == fp {
			return false, nil
		}
	}
	l.seqs[url] = append(l.seqs[url], fp)
	if err := l.saveLocked(); err != nil {
		// Roll back the in-memory append so state never runs ahead of disk.
		seq := l.seqs[url]
		l.seqs[url] = seq[:len(seq)-1]
		return false, fmt.Errorf("persist ledger: %w", err)
	}
	return true, nil
}

// Resources returns the number of resources with at least one recorded
// version.
func (l *Ledger) Resources() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seqs)
}

// saveLocked rewrites the entire mapping atomically. Callers hold l.mu.
func (l *Ledger) saveLocked() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l.seqs, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(l.path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, l.path)
}
