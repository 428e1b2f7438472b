package ledger

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsmon.json")
	l, err := Open(path)
	require.NoError(t, err)
	return l, path
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	l, _ := openTemp(t)
	assert.Empty(t, l.History("https://example.com/app.js"))
	assert.Equal(t, 0, l.Resources())
	_, ok := l.Latest("https://example.com/app.js")
	assert.False(t, ok)
}

func TestAppendPreservesFirstSeenOrder(t *testing.T) {
	l, _ := openTemp(t)
	url := "https://example.com/app.js"

	for _, fp := range []string{"aaaa", "bbbb", "cccc"} {
		appended, err := l.Append(url, fp)
		require.NoError(t, err)
		assert.True(t, appended)
	}
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, l.History(url))

	first, ok := l.Initial(url)
	require.True(t, ok)
	assert.Equal(t, "aaaa", first)
	last, ok := l.Latest(url)
	require.True(t, ok)
	assert.Equal(t, "cccc", last)
}

func TestAppendDedupsAcrossWholeHistory(t *testing.T) {
	l, _ := openTemp(t)
	url := "https://example.com/app.js"

	for _, fp := range []string{"aaaa", "bbbb"} {
		_, err := l.Append(url, fp)
		require.NoError(t, err)
	}

	// Re-appearance of the oldest version: membership is checked across the
	// whole sequence, not just the tail.
	appended, err := l.Append(url, "aaaa")
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, []string{"aaaa", "bbbb"}, l.History(url))
}

func TestAppendPersistsAcrossReopen(t *testing.T) {
	l, path := openTemp(t)
	url := "https://example.com/app.js"
	_, err := l.Append(url, "aaaa")
	require.NoError(t, err)
	_, err = l.Append(url, "bbbb")
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "bbbb"}, reopened.History(url))
}

func TestHistoryReturnsACopy(t *testing.T) {
	l, _ := openTemp(t)
	url := "https://example.com/app.js"
	_, err := l.Append(url, "aaaa")
	require.NoError(t, err)

	h := l.History(url)
	h[0] = "mutated"
	assert.Equal(t, []string{"aaaa"}, l.History(url))
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	l, path := openTemp(t)

	urls := []string{
		"https://example.com/a.js",
		"https://example.com/b.js",
		"https://example.com/c.js",
		"https://example.com/d.js",
	}
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			for _, fp := range []string{"aaaa", "bbbb", "cccc"} {
				_, err := l.Append(url, fp)
				assert.NoError(t, err)
			}
		}(url)
	}
	wg.Wait()

	reopened, err := Open(path)
	require.NoError(t, err)
	for _, url := range urls {
		assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, reopened.History(url))
	}
}
