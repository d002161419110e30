// Package util provides common utility functions used across the sequencer.
package util

import (
	"strconv"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanField trims surrounding whitespace and quoting from a raw CSV field.
func CleanField(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// SplitKeyValue splits a comment token on its first '='. ok is false for
// tokens without one.
func SplitKeyValue(token string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(token, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value), ok
}

// SplitComment splits a row comment into its ';' separated segments,
// dropping empty ones. An empty comment yields no segments.
func SplitComment(comment string) []string {
	var segments []string
	for _, segment := range strings.Split(comment, ";") {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// FormatFloat renders a float the way the scene descriptor files carry
// them: shortest decimal form, no exponent.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
