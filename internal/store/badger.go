package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key spaces inside the BadgerDB backing. One durable record per fingerprint
// per kind, mirroring the filesystem layout.
const (
	prefixContent  = "content/"
	prefixMetadata = "meta/"
	prefixSummary  = "summary/"
)

// BadgerStore satisfies Store on top of an embedded BadgerDB instance. It is
// the alternative backing the filesystem layout is abstracted behind: same
// idempotent, first-write-wins contract, different durability substrate.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig configures the embedded database.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// Logger receives BadgerDB's internal messages. Nil disables them.
	Logger *slog.Logger
}

// NewBadgerStore opens (or creates) the database.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger store path must be non-empty")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) PutContent(fp string, content []byte) error {
	return s.putOnce(prefixContent, fp, content)
}

func (s *BadgerStore) GetContent(fp string) ([]byte, bool, error) {
	return s.get(prefixContent, fp)
}

func (s *BadgerStore) PutMetadata(fp string, md Metadata) error {
	b, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return s.putOnce(prefixMetadata, fp, b)
}

func (s *BadgerStore) GetMetadata(fp string) (Metadata, bool, error) {
	b, ok, err := s.get(prefixMetadata, fp)
	if err != nil || !ok {
		return Metadata{}, ok, err
	}
	var md Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return Metadata{}, false, fmt.Errorf("decode metadata for %s: %w", fp, err)
	}
	return md, true, nil
}

func (s *BadgerStore) PutSummary(fp string, summary json.RawMessage) error {
	return s.putOnce(prefixSummary, fp, summary)
}

func (s *BadgerStore) GetSummary(fp string) (json.RawMessage, bool, error) {
	b, ok, err := s.get(prefixSummary, fp)
	return json.RawMessage(b), ok, err
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error { return s.db.Close() }

// putOnce writes key=value unless the key already exists. The existence
// check and the write share one transaction, so concurrent identical puts
// remain harmless.
func (s *BadgerStore) putOnce(prefix, fp string, value []byte) error {
	if !ValidFingerprint(fp) {
		return fmt.Errorf("invalid fingerprint %q", fp)
	}
	key := []byte(prefix + fp)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // first write wins
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
}

func (s *BadgerStore) get(prefix, fp string) ([]byte, bool, error) {
	if !ValidFingerprint(fp) {
		return nil, false, fmt.Errorf("invalid fingerprint %q", fp)
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + fp))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
