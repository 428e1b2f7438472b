package targets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTarget(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingDirIsEmpty(t *testing.T) {
	urls, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestLoadSkipsHiddenAndInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "site-a.txt", "https://a.example.com/app.js\n\nnot a url\nftp://a.example.com/x\n")
	writeTarget(t, dir, ".hidden", "https://hidden.example.com/app.js\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	urls, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/app.js"}, urls)
}

func TestLoadDeterministicOrderAndDedup(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "b.txt", "https://two.example.com/app.js\nhttps://one.example.com/app.js\n")
	writeTarget(t, dir, "a.txt", "https://one.example.com/app.js\nhttps://three.example.com/app.js\n")

	urls, err := Load(dir)
	require.NoError(t, err)
	// Files in name order, first occurrence wins.
	assert.Equal(t, []string{
		"https://one.example.com/app.js",
		"https://three.example.com/app.js",
		"https://two.example.com/app.js",
	}, urls)
}

func TestIsValidURL(t *testing.T) {
	valid := []string{"https://example.com/a.js", "http://example.com", "https://example.com:8443/x?y=1"}
	invalid := []string{"", "example.com/a.js", "ftp://example.com/a.js", "https://", "not a url"}
	for _, u := range valid {
		assert.True(t, IsValidURL(u), u)
	}
	for _, u := range invalid {
		assert.False(t, IsValidURL(u), u)
	}
}
