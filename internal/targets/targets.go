// Package targets loads the set of monitored URLs from a targets
// directory: every non-hidden regular file is read as a newline-delimited
// URL list. Order is deterministic (files in name order, lines top to
// bottom) and duplicates keep their first occurrence.
package targets

import (
	"bufio"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load collects the monitored URLs under dir. A missing directory yields an
// empty list; an unreadable file is logged and skipped. Deciding whether an
// empty result is fatal belongs to the caller.
func Load(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("targets directory does not exist", "dir", dir)
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var urls []string
	seen := make(map[string]struct{})
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			slog.Error("failed to read target file", "file", path, "error", err)
			continue
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || !IsValidURL(line) {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			urls = append(urls, line)
		}
		if err := sc.Err(); err != nil {
			slog.Error("failed to scan target file", "file", path, "error", err)
		}
		_ = f.Close()
	}
	return urls, nil
}

// IsValidURL reports whether s is an absolute http(s) URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
