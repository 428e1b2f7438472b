// Package diff reconstructs differences between any two stored versions.
// It reads both blobs through the content store, normalizes each side
// identically, and produces classic unified patches (---/+++ headers, @@
// hunks) via github.com/pmezard/go-difflib/difflib, plus a side-by-side
// HTML rendering for human inspection.
//
// Absent content is never an error here: both renderers degrade to a
// descriptive placeholder artifact so the caller can keep processing the
// resource.
package diff

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"

	"jsmon/internal/normalize"
)

// defaultContext is the number of context lines in unified hunks.
const defaultContext = 3

// ContentSource is the slice of the content store the engine needs.
type ContentSource interface {
	GetContent(fp string) (content []byte, ok bool, err error)
}

// Engine produces diffs between two fingerprints.
type Engine struct {
	src     ContentSource
	context int
}

// NewEngine returns an Engine reading blobs from src.
func NewEngine(src ContentSource) *Engine {
	return &Engine{src: src, context: defaultContext}
}

// fromLabel/toLabel name the two sides in headers, keyed by fingerprint.
func fromLabel(fp string) string { return "previous/" + fp }
func toLabel(fp string) string   { return "current/" + fp }

// Text returns a unified diff between the normalized forms of oldFP and
// newFP. Identical normalized forms yield an empty string. Missing content
// for either fingerprint yields a placeholder patch, never an error.
func (e *Engine) Text(oldFP, newFP string) string {
	oldLines, newLines, missing := e.loadBoth(oldFP, newFP)
	if missing != "" {
		return unavailable(oldFP, newFP, missing)
	}

	u := difflib.UnifiedDiff{
		A:        withNewlines(oldLines),
		B:        withNewlines(newLines),
		FromFile: fromLabel(oldFP),
		ToFile:   toLabel(newFP),
		Context:  e.context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		// Very rare; keep the artifact contract instead of failing.
		return unavailable(oldFP, newFP, err.Error())
	}
	return s
}

// loadBoth fetches and normalizes both sides. missing describes the first
// problem encountered, or is empty when both sides loaded.
func (e *Engine) loadBoth(oldFP, newFP string) (oldLines, newLines []string, missing string) {
	load := func(fp string) ([]string, string) {
		content, ok, err := e.src.GetContent(fp)
		if err != nil {
			return nil, fmt.Sprintf("reading content for fingerprint %s failed: %v", fp, err)
		}
		if !ok {
			return nil, fmt.Sprintf("content for fingerprint %s is not stored", fp)
		}
		return normalize.Lines(content), ""
	}
	oldLines, missing = load(oldFP)
	if missing != "" {
		return nil, nil, missing
	}
	newLines, missing = load(newFP)
	if missing != "" {
		return nil, nil, missing
	}
	return oldLines, newLines, ""
}

// unavailable is the placeholder patch used when a side cannot be read.
func unavailable(oldFP, newFP, reason string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff unavailable: %s\n",
		fromLabel(oldFP), toLabel(newFP), reason)
}

// withNewlines re-attaches line terminators, which difflib expects for
// stable hunk output.
func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln + "\n"
	}
	return out
}
