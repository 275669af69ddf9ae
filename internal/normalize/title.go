// Package normalize rewrites title, author and journal fields to the house
// style.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibclean/internal/fieldtext"
	"github.com/matsen/bibclean/internal/remark"
)

// minCasedLen is the longest word left untouched by title casing.
const minCasedLen = 3

// Title collapses whitespace, capitalizes words longer than three
// characters and wraps unusually capitalized words (McDonald, iPhone) in
// braces so bibliography styles keep them verbatim. Applying Title to its
// own output returns the same string.
func Title(title string, rep remark.Reporter) string {
	words := fieldtext.Words(fieldtext.Collapse(title))
	for i, w := range words {
		words[i] = titleWord(w, rep)
	}
	return strings.Join(words, " ")
}

func titleWord(word string, rep remark.Reporter) string {
	if fieldtext.IsProtected(word) {
		return word
	}
	lead, core, trail := splitPunct(word)
	if len([]rune(core)) <= minCasedLen {
		return word
	}

	segments := strings.Split(core, "-")
	for _, s := range segments {
		if isUnusual(s) {
			rep.Infof("protected unusually capitalized word %q in title", core)
			return lead + "{" + core + "}" + trail
		}
	}
	for i, s := range segments {
		segments[i] = capitalize(s)
	}
	return lead + strings.Join(segments, "-") + trail
}

// splitPunct separates leading and trailing punctuation from a word.
func splitPunct(word string) (lead, core, trail string) {
	isWordRune := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

	start := strings.IndexFunc(word, isWordRune)
	if start < 0 {
		return word, "", ""
	}
	end := strings.LastIndexFunc(word, isWordRune)
	_, size := utf8.DecodeRuneInString(word[end:])
	end += size
	return word[:start], word[start:end], word[end:]
}

// isUnusual reports whether s has an upper-case letter after its first
// character while not being an all-capitals acronym.
func isUnusual(s string) bool {
	upperAfterFirst := false
	allUpper := true
	hasLetter := false
	for i, r := range []rune(s) {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if unicode.IsUpper(r) {
			if i > 0 {
				upperAfterFirst = true
			}
		} else {
			allUpper = false
		}
	}
	return hasLetter && upperAfterFirst && !allUpper
}

// capitalize upper-cases the first character and lower-cases the rest.
// Short segments and acronyms are returned unchanged.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) <= minCasedLen || isAcronym(runes) {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func isAcronym(runes []rune) bool {
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 1
}
