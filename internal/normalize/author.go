package normalize

import (
	"strings"
	"unicode"

	"github.com/matsen/bibclean/internal/fieldtext"
	"github.com/matsen/bibclean/internal/remark"
)

// NameSeparator separates the names of an author or editor list.
const NameSeparator = " and "

// Authors abbreviates every name of a list:
// "Albus Percival Wulfric Brian Dumbledore" -> "A. Dumbledore".
// Middle names are dropped and "Last, First" is reordered first; a
// multi-word surname before the comma is kept whole in braces.
func Authors(list string, rep remark.Reporter) string {
	names := fieldtext.SplitTop(fieldtext.Collapse(list), NameSeparator)
	for i, name := range names {
		names[i] = abbreviateName(strings.TrimSpace(name), rep)
	}
	return strings.Join(names, NameSeparator)
}

// FirstSurname returns the surname of the first name in a normalized list.
func FirstSurname(list string) string {
	names := fieldtext.SplitTop(fieldtext.Collapse(list), NameSeparator)
	tokens := fieldtext.Words(names[0])
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

func abbreviateName(name string, rep remark.Reporter) string {
	if name == "" || name == "others" {
		return name
	}

	if parts := fieldtext.SplitTop(name, ","); len(parts) > 1 {
		// "Last, First" or "Last, Jr, First": everything before the first
		// comma is the surname
		surname := protectSurname(strings.TrimSpace(parts[0]))
		given := fieldtext.Words(strings.TrimSpace(parts[len(parts)-1]))
		if len(given) == 0 || surname == "" {
			rep.Warnf("name %q has a single token, abbreviation could not be verified", name)
			return name
		}
		return initial(given[0]) + " " + surname
	}

	tokens := fieldtext.Words(name)
	if len(tokens) < 2 {
		rep.Warnf("name %q has a single token, abbreviation could not be verified", name)
		return name
	}
	return initial(tokens[0]) + " " + tokens[len(tokens)-1]
}

// protectSurname wraps a multi-word surname (Le Cun, van der Berg) in
// braces so it stays one token in "First Last" form.
func protectSurname(surname string) string {
	if len(fieldtext.Words(surname)) < 2 {
		return surname
	}
	return "{" + surname + "}"
}

// initial reduces a given name to its first character and a period. A
// leading brace group such as {\'E} or a TeX accent is kept whole.
func initial(token string) string {
	switch {
	case strings.HasPrefix(token, "{"):
		depth := 0
		for i, r := range token {
			if r == '{' {
				depth++
			} else if r == '}' {
				depth--
				if depth == 0 {
					return token[:i+1] + "."
				}
			}
		}
		return token + "."
	case strings.HasPrefix(token, `\`):
		for i, r := range token {
			if i > 1 && unicode.IsLetter(r) {
				end := i + len(string(r))
				if strings.HasPrefix(token[end:], "}") {
					end++
				}
				return token[:end] + "."
			}
		}
		return token + "."
	}
	r := []rune(token)
	return string(r[0]) + "."
}
