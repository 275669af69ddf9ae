package citekey

import (
	"strings"
	"unicode"

	"github.com/matsen/bibclean/internal/fieldtext"
)

// defaultJournals maps journal names to the abbreviation used in keys.
var defaultJournals = map[string]string{
	"Journal of Machine Learning Research":                           "JMLR",
	"Transactions on Machine Learning Research":                      "TMLR",
	"Journal of Artificial Intelligence Research":                    "JAIR",
	"Artificial Intelligence":                                        "AIJ",
	"IEEE Transactions on Pattern Analysis and Machine Intelligence": "TPAMI",
	"IEEE Transactions on Neural Networks and Learning Systems":      "TNNLS",
	"International Journal of Computer Vision":                       "IJCV",
	"Neural Computation":                                             "NeCo",
	"Transactions of the Association for Computational Linguistics":  "TACL",
	"Computational Linguistics":                                      "CL",
	"Journal of the ACM":                                             "JACM",
	"Communications of the ACM":                                      "CACM",
	"ACM Transactions on Computational Logic":                        "TOCL",
	"SIAM Journal on Computing":                                      "SICOMP",
	"Theoretical Computer Science":                                   "TCS",
	"Information and Computation":                                    "IC",
	"Autonomous Agents and Multi-Agent Systems":                      "JAAMAS",
	"Annals of Mathematics and Artificial Intelligence":              "AMAI",
	"Proceedings of the National Academy of Sciences":                "PNAS",
	"PLOS Computational Biology":                                     "PLoSCB",
	"Nature":                                                         "Nature",
	"Science":                                                        "Science",
}

// JournalTable resolves journal names to key abbreviations.
type JournalTable struct {
	byName   map[string]string
	byAbbrev map[string]string
}

// NewJournalTable builds the default table extended (or overridden) by
// extra, which maps journal names to abbreviations.
func NewJournalTable(extra map[string]string) *JournalTable {
	t := &JournalTable{
		byName:   make(map[string]string),
		byAbbrev: make(map[string]string),
	}
	for name, abbrev := range defaultJournals {
		t.Add(name, abbrev)
	}
	for name, abbrev := range extra {
		t.Add(name, abbrev)
	}
	return t
}

// Add registers a journal name and its abbreviation.
func (t *JournalTable) Add(name, abbrev string) {
	abbrev = alnumOnly(abbrev)
	if abbrev == "" {
		return
	}
	t.byName[journalLookupKey(name)] = abbrev
	t.byAbbrev[strings.ToLower(abbrev)] = abbrev
}

// Lookup returns the abbreviation of a journal. A journal that is already
// written as a known abbreviation maps to itself.
func (t *JournalTable) Lookup(journal string) (string, bool) {
	key := journalLookupKey(journal)
	if abbrev, ok := t.byName[key]; ok {
		return abbrev, true
	}
	abbrev, ok := t.byAbbrev[strings.ToLower(alnumOnly(journal))]
	return abbrev, ok
}

// Len returns the number of known journal names.
func (t *JournalTable) Len() int {
	return len(t.byName)
}

// journalLookupKey lower-cases a name and drops braces and punctuation so
// "{IEEE} Transactions on ..." and "IEEE transactions on ..." match.
func journalLookupKey(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r) || r == '-':
			return ' '
		}
		return -1
	}, name)
	return fieldtext.Collapse(cleaned)
}
