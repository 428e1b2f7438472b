package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	inputs := [][]byte{
		[]byte(""),
		[]byte("var x=1;"),
		[]byte("line1\r\nline2\n"),
		[]byte("console.log('héllo, мир');"),
		{0xff, 0xfe, 0x00, 0x01},
	}
	for _, in := range inputs {
		fp := Fingerprint(in)
		assert.Equal(t, fp, Fingerprint(in), "fingerprint must be stable")
		assert.Len(t, fp, fingerprintHexLen)
		assert.True(t, ValidFingerprint(fp), "fingerprint %q should validate", fp)
	}
}

func TestFingerprintByteExact(t *testing.T) {
	// Detection is byte-exact: a whitespace-only change is a new fingerprint.
	a := Fingerprint([]byte("var x = 1;"))
	b := Fingerprint([]byte("var x=1;"))
	assert.NotEqual(t, a, b)
}

func TestValidFingerprintRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "abc", "ABCDEF0123456789", "0123456789abcdeg", "../../etc/passwd"} {
		assert.False(t, ValidFingerprint(s), "should reject %q", s)
	}
}

// openStores returns one instance of every backing under test.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	bs, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = fs.Close()
		_ = bs.Close()
	})
	return map[string]Store{"fs": fs, "badger": bs}
}

func TestStoreRoundTrip(t *testing.T) {
	contents := [][]byte{
		[]byte("var x=1;"),
		[]byte("mixed\r\nline\nendings\r"),
		[]byte("non-ascii: привет 你好 ✓"),
	}
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, content := range contents {
				fp := Fingerprint(content)
				require.NoError(t, s.PutContent(fp, content))
				got, ok, err := s.GetContent(fp)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, content, got, "round trip must be byte-exact")
			}
		})
	}
}

func TestStorePutIsIdempotent(t *testing.T) {
	content := []byte("var x=1;")
	fp := Fingerprint(content)
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.PutContent(fp, content))
			require.NoError(t, s.PutContent(fp, content))
			got, ok, err := s.GetContent(fp)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, content, got)
		})
	}
}

func TestStoreAbsentIsNotAnError(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetContent("00000000deadbeef")
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = s.GetMetadata("00000000deadbeef")
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = s.GetSummary("00000000deadbeef")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreMetadataFirstWriteWins(t *testing.T) {
	fp := Fingerprint([]byte("var x=1;"))
	first := Metadata{URL: "https://example.com/app.js", FetchedAt: "2026-08-24T10:00:00Z", Size: 8}
	second := Metadata{URL: "https://example.com/other.js", FetchedAt: "2026-08-24T11:00:00Z", Size: 8}
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.PutMetadata(fp, first))
			require.NoError(t, s.PutMetadata(fp, second))
			got, ok, err := s.GetMetadata(fp)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, first, got, "metadata keeps its first sighting")
		})
	}
}

func TestStoreSummaryOptionalAndImmutable(t *testing.T) {
	content := []byte("var x=1;")
	fp := Fingerprint(content)
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.PutContent(fp, content))

			// Content present, summary legitimately absent.
			_, ok, err := s.GetSummary(fp)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.PutSummary(fp, json.RawMessage(`{"concise_summary":"first"}`)))
			require.NoError(t, s.PutSummary(fp, json.RawMessage(`{"concise_summary":"second"}`)))
			got, ok, err := s.GetSummary(fp)
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"concise_summary":"first"}`, string(got))
		})
	}
}

func TestStoreRejectsInvalidFingerprint(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.PutContent("../escape", []byte("x")))
			_, _, err := s.GetContent("not-a-fp")
			assert.Error(t, err)
		})
	}
}
