package citekey

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/normalize"
	"github.com/matsen/bibclean/internal/remark"
)

// Placeholders used when a key component cannot be resolved.
const (
	UnknownName  = "XXX"
	UnknownVenue = "XXX"
	UnknownYear  = "???"
	// MarkerKey is named in the warning for proceedings whose title cannot
	// be parsed. It is never assigned: such entries keep their own key.
	MarkerKey = UnknownVenue + UnknownYear
)

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	fourDigits   = regexp.MustCompile(`\d{4}`)
)

// Proceedings is a proceedings entry as seen by the papers referencing it.
type Proceedings struct {
	Entry      *bibtex.Entry
	Conference Conference
	Parsed     bool // Conference was extracted from the title
}

// Parts are the components of a paper key.
type Parts struct {
	Surname string
	Venue   string
	Year    string
}

// Base returns <Surname>-<Venue><Year>.
func (p Parts) Base() string {
	return p.Surname + "-" + p.Venue + p.Year
}

// Generator computes keys and keeps them unique through an Enumerator.
type Generator struct {
	journals *JournalTable
	enum     *Enumerator
}

// NewGenerator creates a Generator. A nil table uses the default journals.
func NewGenerator(journals *JournalTable, enum *Enumerator) *Generator {
	if journals == nil {
		journals = NewJournalTable(nil)
	}
	if enum == nil {
		enum = NewEnumerator()
	}
	return &Generator{journals: journals, enum: enum}
}

// ProceedingsKey returns the unique key <Abbrev><YearAbbrev>.
func (g *Generator) ProceedingsKey(c Conference) string {
	return g.enum.Next(c.Key())
}

// PaperKey returns the unique key for the parts, suffixed when its base
// has been handed out before.
func (g *Generator) PaperKey(p Parts) string {
	return g.enum.Next(p.Base())
}

// Reserve marks an existing key as used.
func (g *Generator) Reserve(key string) {
	g.enum.Reserve(key)
}

// PaperParts resolves the key components of a non-proceedings entry. proc
// is the proceedings the entry cross-references, or nil.
func (g *Generator) PaperParts(e *bibtex.Entry, proc *Proceedings, rep remark.Reporter) Parts {
	p := Parts{
		Surname: Surname(e),
		Venue:   g.venue(e, proc, rep),
		Year:    year(e, proc),
	}
	if p.Surname == UnknownName {
		rep.Warnf("no author or editor to derive the key from, using %s", UnknownName)
	}
	return p
}

// Surname returns the ASCII letters of the first author's surname, falling
// back to the first editor.
func Surname(e *bibtex.Entry) string {
	people, ok := e.Get("author")
	if !ok || strings.TrimSpace(people) == "" {
		people = e.Value("editor")
	}
	folded, _, err := transform.String(stripAccents, normalize.FirstSurname(people))
	if err != nil {
		folded = normalize.FirstSurname(people)
	}
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, folded)
	if name == "" {
		return UnknownName
	}
	return name
}

func (g *Generator) venue(e *bibtex.Entry, proc *Proceedings, rep remark.Reporter) string {
	fromProceedings := func() string {
		if proc != nil && proc.Parsed {
			return alnumOnly(proc.Conference.Abbrev)
		}
		return ""
	}
	fromJournal := func() string {
		journal, ok := e.Get("journal")
		if !ok {
			return ""
		}
		if repo := normalize.RepositoryOf(journal); repo != normalize.NoRepository {
			return string(repo)
		}
		if abbrev, ok := g.journals.Lookup(journal); ok {
			return abbrev
		}
		rep.Warnf("no abbreviation known for journal %q, add it to the journals table", journal)
		return ""
	}

	order := []func() string{fromJournal, fromProceedings}
	if e.Type == bibtex.TypeInproceedings {
		order = []func() string{fromProceedings, fromJournal}
	}
	for _, source := range order {
		if v := source(); v != "" {
			return v
		}
	}
	return UnknownVenue
}

func year(e *bibtex.Entry, proc *Proceedings) string {
	if y := fourDigits.FindString(e.Value("year")); y != "" {
		return y
	}
	if proc == nil {
		return UnknownYear
	}
	if y := fourDigits.FindString(proc.Entry.Value("year")); y != "" {
		return y
	}
	if proc.Parsed {
		return proc.Conference.YearAbbrev
	}
	return UnknownYear
}
