package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	contentFileName  = "content.js"
	metadataFileName = "metadata.json"
	summaryFileName  = "summary.json"
)

// FSStore persists one directory per fingerprint under a root:
//
//	<root>/<fingerprint>/content.js
//	<root>/<fingerprint>/metadata.json
//	<root>/<fingerprint>/summary.json
//
// The key space is encoded directly into the filesystem namespace, which
// makes deduplication and lookup trivial. Every write goes through a
// temp-file-then-rename step so readers never observe a partially-written
// record.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns the store.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("store root must be non-empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// PutContent stores content under fp. A fingerprint already present is left
// untouched and the call succeeds.
func (s *FSStore) PutContent(fp string, content []byte) error {
	return s.putFile(fp, contentFileName, content)
}

// GetContent returns the exact bytes previously stored under fp.
func (s *FSStore) GetContent(fp string) ([]byte, bool, error) {
	return s.getFile(fp, contentFileName)
}

// PutMetadata stores the first-observation record for fp. First write wins.
func (s *FSStore) PutMetadata(fp string, md Metadata) error {
	b, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return s.putFile(fp, metadataFileName, b)
}

// GetMetadata returns the metadata record for fp.
func (s *FSStore) GetMetadata(fp string) (Metadata, bool, error) {
	b, ok, err := s.getFile(fp, metadataFileName)
	if err != nil || !ok {
		return Metadata{}, ok, err
	}
	var md Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return Metadata{}, false, fmt.Errorf("decode metadata for %s: %w", fp, err)
	}
	return md, true, nil
}

// PutSummary stores the summarizer record for fp. First write wins; the
// record is read-only afterward.
func (s *FSStore) PutSummary(fp string, summary json.RawMessage) error {
	return s.putFile(fp, summaryFileName, summary)
}

// GetSummary returns the summary record for fp. Absence is normal: summary
// generation is optional relative to content storage.
func (s *FSStore) GetSummary(fp string) (json.RawMessage, bool, error) {
	b, ok, err := s.getFile(fp, summaryFileName)
	return json.RawMessage(b), ok, err
}

// Close is a no-op for the filesystem backing.
func (s *FSStore) Close() error { return nil }

func (s *FSStore) recordPath(fp, name string) (string, error) {
	if !ValidFingerprint(fp) {
		return "", fmt.Errorf("invalid fingerprint %q", fp)
	}
	return filepath.Join(s.root, fp, name), nil
}

func (s *FSStore) putFile(fp, name string, data []byte) error {
	path, err := s.recordPath(fp, name)
	if err != nil {
		return err
	}
	// Fast path: record already written; content addressing guarantees the
	// existing bytes match.
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}
	return writeFileAtomic(path, data)
}

func (s *FSStore) getFile(fp, name string) ([]byte, bool, error) {
	path, err := s.recordPath(fp, name)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// writeFileAtomic writes data to a temporary sibling and renames it into
// place, so a crash mid-write never leaves a truncated record.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
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
	return os.Rename(tmp, path)
}
