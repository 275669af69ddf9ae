// Package prune removes the fields an entry type does not keep.
package prune

import (
	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/remark"
)

var (
	proceedingsFields = []string{"title", "booktitle", "year", "note"}
	paperFields       = []string{
		"title", "author", "booktitle", "journal", "volume", "number",
		"pages", "editor", "crossref", "note", "year",
	}
)

// Allowed returns the fields kept for e. Papers with a crossref lose their
// year since it is inherited from the proceedings.
func Allowed(e *bibtex.Entry) map[string]bool {
	names := paperFields
	if e.Type == bibtex.TypeProceedings {
		names = proceedingsFields
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	if e.Type != bibtex.TypeProceedings && e.Has("crossref") {
		delete(allowed, "year")
	}
	return allowed
}

// Fields deletes every field of e that is not allowed for its type and
// returns the removed names.
func Fields(e *bibtex.Entry, rep remark.Reporter) []string {
	allowed := Allowed(e)
	var removed []string
	for _, name := range e.FieldNames() {
		if !allowed[name] {
			e.Delete(name)
			removed = append(removed, name)
		}
	}
	if len(removed) > 0 {
		rep.Infof("removed fields: %v", removed)
	}
	return removed
}
