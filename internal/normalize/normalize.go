// Package normalize reformats JavaScript deterministically before diffing.
//
// The same reformatting is applied to both sides of a comparison, so a file
// whose only upstream change is re-minification or re-formatting produces a
// quiet diff. Normalization affects the diff view only: change detection
// stays byte-exact because fingerprints are computed on raw bytes upstream.
//
// The reformatter is a single-pass scanner, not a parser. It tracks string,
// template-literal and comment contexts, splits statements after ';', '{'
// and '}', re-indents by brace depth with tabs, and canonicalizes code
// whitespace: a space survives only between two identifier characters
// ("typeof x"), never around punctuation, so "var x = 1;" and "var x=1;"
// normalize to the same line. It cannot fail: any input, however malformed,
// degrades to a plain sequence of trimmed lines.
package normalize

import (
	"strings"

	"jsmon/internal/textutil"
)

type scanState int

const (
	stCode scanState = iota
	stString
	stTemplate
	stLineComment
	stBlockComment
)

// Lines returns the normalized line sequence for content. Lines carry no
// trailing newline and no trailing whitespace; blank lines are dropped.
func Lines(content []byte) []string {
	src := string(textutil.NormalizeUTF8LF(content))

	sc := scanner{}
	state := stCode
	var quote byte

	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch state {
		case stCode:
			if sc.closerPending && c != ' ' && c != '\t' && c != ';' && c != ',' && c != ')' && c != ']' && c != '\n' {
				sc.flush()
			}
			sc.closerPending = false

			switch {
			case c == ' ' || c == '\t':
				sc.space()
			case c == '"' || c == '\'':
				state = stString
				quote = c
				sc.write(c)
			case c == '`':
				state = stTemplate
				sc.write(c)
			case c == '/' && next == '/':
				state = stLineComment
				sc.write(c)
				sc.writeRaw(next)
				i++
			case c == '/' && next == '*':
				state = stBlockComment
				sc.write(c)
				sc.writeRaw(next)
				i++
			case c == '{':
				sc.write(c)
				sc.depth++
				sc.flush()
			case c == '}':
				if sc.depth > 0 {
					sc.depth--
				}
				if sc.cur.Len() > 0 {
					sc.flush()
				}
				sc.write(c)
				sc.closerPending = true
			case c == ';':
				sc.write(c)
				sc.flush()
			case c == '\n':
				sc.flush()
			default:
				sc.write(c)
			}

		case stString:
			sc.writeRaw(c)
			switch c {
			case '\\':
				if i+1 < len(src) {
					sc.writeRaw(next)
					i++
				}
			case quote:
				state = stCode
			case '\n':
				// Unterminated string literal; recover as plain code.
				state = stCode
			}

		case stTemplate:
			switch c {
			case '\\':
				sc.writeRaw(c)
				if i+1 < len(src) {
					sc.writeRaw(next)
					i++
				}
			case '`':
				sc.writeRaw(c)
				state = stCode
			case '\n':
				sc.flush()
			default:
				sc.writeRaw(c)
			}

		case stLineComment:
			if c == '\n' {
				sc.flush()
				state = stCode
			} else {
				sc.writeRaw(c)
			}

		case stBlockComment:
			switch {
			case c == '*' && next == '/':
				sc.writeRaw(c)
				sc.writeRaw(next)
				i++
				state = stCode
			case c == '\n':
				sc.flush()
			default:
				sc.writeRaw(c)
			}
		}
	}
	sc.flush()

	out := make([]string, len(sc.lines))
	for i, ln := range sc.lines {
		out[i] = strings.Repeat("\t", ln.indent) + ln.text
	}
	return out
}

type line struct {
	text   string
	indent int
}

// scanner accumulates the current line and its indent, flushing completed
// lines. Regex literals are not tracked; a pathological regex only affects
// where lines split, never whether normalization succeeds.
type scanner struct {
	lines         []line
	cur           strings.Builder
	curIndent     int
	depth         int
	last          byte
	pendingSpace  bool
	closerPending bool
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

// space records a whitespace run in code context. It materializes as a
// single space only if both neighbors are identifier characters.
func (s *scanner) space() {
	if s.cur.Len() > 0 {
		s.pendingSpace = true
	}
}

// write appends a code-context byte, applying whitespace canonicalization.
func (s *scanner) write(c byte) {
	if s.pendingSpace {
		s.pendingSpace = false
		if isIdentChar(s.last) && isIdentChar(c) {
			s.cur.WriteByte(' ')
		}
	}
	s.writeRaw(c)
}

// writeRaw appends a byte verbatim (string, template and comment contexts).
// The indent of a line is the brace depth at its first character.
func (s *scanner) writeRaw(c byte) {
	if s.cur.Len() == 0 {
		if c == ' ' || c == '\t' {
			return
		}
		s.curIndent = s.depth
	}
	s.cur.WriteByte(c)
	s.last = c
}

func (s *scanner) flush() {
	text := strings.TrimRight(s.cur.String(), " \t")
	s.cur.Reset()
	s.pendingSpace = false
	s.closerPending = false
	if text == "" {
		return
	}
	s.lines = append(s.lines, line{text: text, indent: s.curIndent})
}
