package textutil

import "bytes"

// NormalizeUTF8LF converts CRLF/CR to LF and ensures the output is valid
// UTF-8 by replacing invalid byte sequences with the Unicode replacement
// character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// CountLines returns the number of lines in b, counting a trailing partial
// line. Empty input has zero lines.
func CountLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte("\n"))
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

// Truncate caps s at max bytes, appending marker when anything was cut.
// max <= 0 means "no limit".
func Truncate(s string, max int, marker string) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + marker
}
