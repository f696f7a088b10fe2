// Package stringtest provides helpers for asserting on rendered log output.
package stringtest

import (
	"regexp"
	"strings"
)

var sgr = regexp.MustCompile("\x1b\\[([0-9;]*)m")

// JoinLF joins lines with LF line endings and terminates the last one.
// Use it to build the expected contents of a sink.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"info  started",
//		"warn  slow",
//	) // -> "info  started\nwarn  slow\n"
func JoinLF(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// StripANSI removes SGR escape sequences from s.
func StripANSI(s string) string {
	return sgr.ReplaceAllString(s, "")
}

// Visible replaces each SGR escape sequence in s with its parameters in
// angle brackets, so "\x1b[1;31mx\x1b[0m" becomes "<1;31>x<0>".
func Visible(s string) string {
	return sgr.ReplaceAllString(s, "<$1>")
}
