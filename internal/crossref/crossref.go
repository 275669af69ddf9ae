// Package crossref links papers to the proceedings they cross-reference
// and propagates proceedings key renames to them.
package crossref

import (
	"sort"
	"strings"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/remark"
)

// Rename is one proceedings key change.
type Rename struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// RenameMap maps proceedings original keys to their new keys. It is
// read-only; build one with a RenameBuilder.
type RenameMap struct {
	m map[string]string
}

// Lookup returns the new key of a proceedings original key.
func (r RenameMap) Lookup(old string) (string, bool) {
	k, ok := r.m[old]
	return k, ok
}

// Len returns the number of renames.
func (r RenameMap) Len() int {
	return len(r.m)
}

// Renames returns the renames sorted by old key.
func (r RenameMap) Renames() []Rename {
	renames := make([]Rename, 0, len(r.m))
	for old, nk := range r.m {
		renames = append(renames, Rename{Old: old, New: nk})
	}
	sort.Slice(renames, func(i, j int) bool { return renames[i].Old < renames[j].Old })
	return renames
}

// RenameBuilder collects renames during the proceedings stage.
type RenameBuilder struct {
	m map[string]string
}

// Record notes that the proceedings loaded as old is now keyed newKey.
// Recording an unchanged key is a no-op.
func (b *RenameBuilder) Record(old, newKey string) {
	if old == newKey {
		return
	}
	if b.m == nil {
		b.m = make(map[string]string)
	}
	b.m[old] = newKey
}

// Freeze returns the collected renames. The builder must not be used
// afterwards.
func (b *RenameBuilder) Freeze() RenameMap {
	m := b.m
	b.m = nil
	if m == nil {
		m = make(map[string]string)
	}
	return RenameMap{m: m}
}

// Resolver finds the proceedings a paper cross-references. It is the only
// reader of the RenameMap and the only writer of crossref fields.
type Resolver struct {
	byKey    map[string]*citekey.Proceedings
	byFolded map[string]*citekey.Proceedings
	renames  RenameMap
	template citekey.Template
}

// NewResolver indexes proceedings by their original keys.
func NewResolver(procs []*citekey.Proceedings, renames RenameMap, t citekey.Template) *Resolver {
	r := &Resolver{
		byKey:    make(map[string]*citekey.Proceedings, len(procs)),
		byFolded: make(map[string]*citekey.Proceedings, len(procs)),
		renames:  renames,
		template: t,
	}
	for _, p := range procs {
		key := p.Entry.OriginalKey()
		r.byKey[key] = p
		if _, exists := r.byFolded[strings.ToLower(key)]; !exists {
			r.byFolded[strings.ToLower(key)] = p
		}
	}
	return r
}

// Resolve returns the proceedings e cross-references, or nil. When the
// proceedings was renamed, the crossref field is rewritten to the new key.
func (r *Resolver) Resolve(e *bibtex.Entry, rep remark.Reporter) *citekey.Proceedings {
	target := strings.TrimSpace(e.Value("crossref"))
	if target == "" {
		if e.Type == bibtex.TypeInproceedings {
			rep.Warnf("entry is self-contained, verify that no shared proceedings exists")
			if booktitle, ok := e.Get("booktitle"); ok {
				rep.Infof("proceedings %q is hardcoded, please extract it into a proceedings entry with a title like %s",
					booktitle, r.template.Pattern())
			}
		}
		return nil
	}

	proc := r.lookup(target)
	if proc == nil {
		rep.Warnf("crossref target %q not found, ensure the proceedings was copied into the working file with a title like %s",
			target, r.template.Pattern())
		return nil
	}

	if newKey, ok := r.renames.Lookup(proc.Entry.OriginalKey()); ok && newKey != target {
		e.Set("crossref", newKey)
		rep.Infof("crossref updated from %q to %q after the proceedings key changed", target, newKey)
	}
	return proc
}

// lookup matches exactly first, then case-insensitively as BibTeX does.
func (r *Resolver) lookup(key string) *citekey.Proceedings {
	if p, ok := r.byKey[key]; ok {
		return p
	}
	return r.byFolded[strings.ToLower(key)]
}
