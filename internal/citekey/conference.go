// Package citekey derives canonical citation keys for bibliography entries.
package citekey

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/fieldtext"
	"github.com/matsen/bibclean/internal/remark"
)

// Template selects the expected form of proceedings titles.
type Template string

const (
	// Short titles look like Proc. of {ICML}'20
	Short Template = "short"
	// Full titles look like Proceedings of the ... ({ICML}'20)
	Full Template = "full"
)

// Valid reports whether t is a known template.
func (t Template) Valid() bool {
	return t == Short || t == Full
}

// Pattern describes the expected title for error messages.
func (t Template) Pattern() string {
	if t == Short {
		return "Proc. of {<ConfAbbrev>}'<YearAbbrev>"
	}
	return "Proceedings of the <Conference> ({<ConfAbbrev>}'<YearAbbrev>)"
}

// ProceedingsTemplate renders a sample proceedings entry in the template.
func ProceedingsTemplate(t Template) string {
	return fmt.Sprintf(`@proceedings{<ConfAbbrev><YearAbbrev>,
  title     = {%[1]s},
  booktitle = {%[1]s},
  year      = {<Year>},
}`, t.Pattern())
}

const abbrevPattern = `\{([A-Za-z0-9-]+)\}(?:/\{([A-Za-z0-9-]+)\})?'(\d{2})`

var (
	shortTitle = regexp.MustCompile(`^Proc\. of ` + abbrevPattern + `$`)
	fullTitle  = regexp.MustCompile(`^Proceedings of (.+) \(` + abbrevPattern + `\)$`)
)

// Conference identifies a conference edition from its proceedings title.
type Conference struct {
	Name       string // Long name, only set for the full template
	Abbrev     string // ICML, or ICML/COLT for joint events
	YearAbbrev string // Two-digit year
}

// Key returns the proceedings key: abbreviation and year with no
// separator and every non-alphanumeric dropped (ICML20).
func (c Conference) Key() string {
	return alnumOnly(c.Abbrev + c.YearAbbrev)
}

// ParseConference matches a whitespace-normalized title against the
// template.
func ParseConference(title string, t Template) (Conference, bool) {
	if t == Short {
		m := shortTitle.FindStringSubmatch(title)
		if m == nil {
			return Conference{}, false
		}
		return newConference("", m[1], m[2], m[3]), true
	}

	m := fullTitle.FindStringSubmatch(title)
	if m == nil {
		return Conference{}, false
	}
	return newConference(m[1], m[2], m[3], m[4]), true
}

func newConference(name, abbrev, joint, year string) Conference {
	if joint != "" {
		abbrev += "/" + joint
	}
	return Conference{Name: name, Abbrev: abbrev, YearAbbrev: year}
}

// ExtractConference normalizes the title and booktitle of a proceedings
// entry in place and parses the conference from the title. Mismatches are
// reported and never fatal.
func ExtractConference(e *bibtex.Entry, t Template, rep remark.Reporter) (Conference, bool) {
	title, hasTitle := e.Get("title")
	booktitle, hasBooktitle := e.Get("booktitle")
	if hasTitle {
		title = fieldtext.Collapse(title)
		e.Set("title", title)
	}
	if hasBooktitle {
		booktitle = fieldtext.Collapse(booktitle)
		e.Set("booktitle", booktitle)
	}

	if hasTitle != hasBooktitle || title != booktitle {
		rep.Warnf("title and booktitle are not equal, please rephrase them to match")
	}
	if !hasTitle {
		if !hasBooktitle {
			rep.Warnf("proceedings has neither title nor booktitle, expected a title like %s", t.Pattern())
			return Conference{}, false
		}
		title = booktitle
	}

	c, ok := ParseConference(title, t)
	if !ok {
		rep.Warnf("title %q is not in the expected format, it should be equivalent to %s", title, t.Pattern())
	}
	return c, ok
}

func alnumOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
