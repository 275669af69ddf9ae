// Package fieldtext provides brace-aware helpers for BibTeX field text.
package fieldtext

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Collapse replaces every run of whitespace, line breaks included, with a
// single space and trims the result.
func Collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Words splits s on spaces outside braces, so a {protected run} stays a
// single word. Runs of spaces produce no empty words.
func Words(s string) []string {
	var words []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case r == ' ' && depth == 0:
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// SplitTop splits s on sep, ignoring occurrences inside braces.
func SplitTop(s, sep string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && strings.HasPrefix(s[i:], sep) {
				parts = append(parts, s[start:i])
				i += len(sep) - 1
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// IsProtected reports whether a word carries braces or a TeX control
// sequence and must be passed through untouched.
func IsProtected(word string) bool {
	return strings.ContainsAny(word, `{}\`)
}
