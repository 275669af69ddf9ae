package normalize

import (
	"regexp"
	"strings"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/remark"
)

// Repository identifies the preprint server a journal field points to.
type Repository string

const (
	NoRepository Repository = ""
	ArXiv        Repository = "arXiv"
	HAL          Repository = "HAL"
)

// arXivPatterns match new-style (2101.00001v2) and old-style
// (math.GT/0309136) identifiers in free text, URLs and DOIs.
var arXivPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}(?:v\d+)?)`),
	regexp.MustCompile(`(?i)arxiv[:.\s]+(\d{4}\.\d{4,5}(?:v\d+)?)`),
	regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([a-z-]+(?:\.[a-z]{2})?/\d{7}(?:v\d+)?)`),
	regexp.MustCompile(`(?i)arxiv[:\s]+([a-z-]+(?:\.[a-z]{2})?/\d{7}(?:v\d+)?)`),
}

// bareArXivID matches an identifier with nothing around it, as found in
// eprint fields and CoRR volumes.
var bareArXivID = regexp.MustCompile(`(?i)^(?:\d{4}\.\d{4,5}|[a-z-]+(?:\.[a-z]{2})?/\d{7})(?:v\d+)?$`)

var halPattern = regexp.MustCompile(`(?i)\bhal-(\d{8}(?:v\d+)?)\b`)

// inspectedFields are searched for identifiers, in order.
var inspectedFields = []string{"journal", "note", "url", "howpublished", "doi"}

// eprintFields become redundant once the journal carries the identifier.
var eprintFields = []string{"eprint", "archiveprefix", "primaryclass"}

// Journal detects arXiv and HAL identifiers anywhere in the entry and
// rewrites the journal field to "arXiv:<id>" or "hal-<id>". Otherwise the
// journal is left as-is; a missing journal on an article is reported.
func Journal(e *bibtex.Entry, rep remark.Reporter) Repository {
	if id, fromVolume := findArXivID(e); id != "" {
		setJournal(e, "arXiv:"+id, rep)
		for _, name := range eprintFields {
			e.Delete(name)
		}
		if fromVolume {
			e.Delete("volume")
		}
		return ArXiv
	}

	if id := findHALID(e); id != "" {
		setJournal(e, "hal-"+id, rep)
		return HAL
	}

	if !e.Has("journal") && e.Type == bibtex.TypeArticle {
		rep.Warnf("journal is missing, please adapt the entry manually")
	}
	return NoRepository
}

// RepositoryOf classifies an already rewritten journal value.
func RepositoryOf(journal string) Repository {
	switch {
	case strings.HasPrefix(journal, "arXiv:"):
		return ArXiv
	case strings.HasPrefix(strings.ToLower(journal), "hal-"):
		return HAL
	}
	return NoRepository
}

func setJournal(e *bibtex.Entry, journal string, rep remark.Reporter) {
	if e.Value("journal") == journal {
		return
	}
	e.Set("journal", journal)
	rep.Infof("rephrased journal: %s", journal)
}

// findArXivID returns the identifier and whether it came from the volume
// of a CoRR record.
func findArXivID(e *bibtex.Entry) (string, bool) {
	if strings.EqualFold(strings.TrimSpace(e.Value("journal")), "CoRR") {
		id := strings.TrimPrefix(strings.TrimSpace(e.Value("volume")), "abs/")
		if bareArXivID.MatchString(id) {
			return id, true
		}
	}

	if eprint := strings.TrimSpace(e.Value("eprint")); eprint != "" {
		prefix := e.Value("archiveprefix")
		if (prefix == "" || strings.EqualFold(prefix, "arxiv")) && bareArXivID.MatchString(eprint) {
			return eprint, false
		}
	}

	for _, name := range inspectedFields {
		value := e.Value(name)
		for _, re := range arXivPatterns {
			if m := re.FindStringSubmatch(value); m != nil {
				return m[1], false
			}
		}
	}
	return "", false
}

func findHALID(e *bibtex.Entry) string {
	for _, name := range inspectedFields {
		if m := halPattern.FindStringSubmatch(e.Value(name)); m != nil {
			return m[1]
		}
	}
	return ""
}
