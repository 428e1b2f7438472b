// Package store provides content-addressed persistence for monitored
// resource versions. Every distinct byte content is identified by a
// fingerprint (truncated sha256) and stored exactly once, together with a
// write-once metadata record and an optional AI summary record.
//
// Two backings satisfy the same contract:
//   - FSStore: one directory per fingerprint on the local filesystem
//   - BadgerStore: an embedded BadgerDB key-value database
//
// All writes are idempotent and first-write-wins; a read of a fingerprint
// that was never stored reports absence, not an error.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// fingerprintHexLen is the number of hex characters kept from the sha256
// digest. 16 chars (64 bits) keeps collision odds negligible for tens of
// thousands of distinct versions.
const fingerprintHexLen = 16

// Fingerprint derives the content identifier for exact bytes. It is a pure
// function: equal input bytes always produce equal fingerprints, across
// calls and across process restarts.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:fingerprintHexLen]
}

// ValidFingerprint reports whether s looks like a fingerprint produced by
// Fingerprint: fixed length, lowercase hex.
func ValidFingerprint(s string) bool {
	if len(s) != fingerprintHexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// Metadata records the first observation of a fingerprint. It is written
// once and never revised; a re-observation of the same content yields the
// same fingerprint and therefore no new record.
type Metadata struct {
	URL       string `json:"url"`
	FetchedAt string `json:"fetched_at"` // RFC3339, UTC
	Size      int    `json:"size"`
}

// Store is the content-addressed persistence contract.
//
// Put* calls are idempotent: storing under an already-present fingerprint is
// a no-op. Get* calls return ok=false for fingerprints never stored; that is
// a normal outcome, not an error. A summary may legitimately be absent even
// when content and metadata exist.
type Store interface {
	PutContent(fp string, content []byte) error
	GetContent(fp string) (content []byte, ok bool, err error)

	PutMetadata(fp string, md Metadata) error
	GetMetadata(fp string) (md Metadata, ok bool, err error)

	PutSummary(fp string, summary json.RawMessage) error
	GetSummary(fp string) (summary json.RawMessage, ok bool, err error)

	Close() error
}
