// Package cleaner runs the two-stage cleaning of a bibliography: proceedings
// first, so their renames are known, then every entry depending on them.
package cleaner

import (
	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/crossref"
	"github.com/matsen/bibclean/internal/normalize"
	"github.com/matsen/bibclean/internal/prune"
	"github.com/matsen/bibclean/internal/remark"
)

// Options control a cleaning run.
type Options struct {
	Template    citekey.Template      // Expected proceedings title form
	ReplaceKeys bool                  // Overwrite keys instead of only suggesting them
	Journals    *citekey.JournalTable // nil uses the default table
}

// KeyChange is the key computed for one entry.
type KeyChange struct {
	Original string `json:"original"`
	Computed string `json:"computed"`
	Applied  bool   `json:"applied"`
}

// Stats summarize a run.
type Stats struct {
	Entries     int            `json:"entries"`
	ByType      map[string]int `json:"by_type"`
	KeysChanged int            `json:"keys_changed"`
	Warnings    int            `json:"warnings"`
	Infos       int            `json:"infos"`
}

// Result is what a run hands back besides the mutated library.
type Result struct {
	Renames crossref.RenameMap
	Keys    []KeyChange
	Stats   Stats
}

// Cleaner normalizes a library in place.
type Cleaner struct {
	opts Options
	sink remark.Sink
}

// New creates a Cleaner that reports to sink.
func New(opts Options, sink remark.Sink) *Cleaner {
	if !opts.Template.Valid() {
		opts.Template = citekey.Full
	}
	if opts.Journals == nil {
		opts.Journals = citekey.NewJournalTable(nil)
	}
	if sink == nil {
		sink = remark.Discard
	}
	return &Cleaner{opts: opts, sink: sink}
}

// run holds the state threaded through both stages of one Run.
type run struct {
	*Cleaner
	counter *countingSink
	gen     *citekey.Generator
	result  *Result
}

// Run cleans every entry of lib. Entries are mutated in place; no entry is
// added or removed. Problems with single entries are reported as remarks.
func (c *Cleaner) Run(lib *bibtex.Library) *Result {
	r := &run{
		Cleaner: c,
		counter: &countingSink{next: c.sink},
		gen:     citekey.NewGenerator(c.opts.Journals, citekey.NewEnumerator()),
		result:  &Result{Stats: Stats{ByType: make(map[string]int)}},
	}

	entries := lib.Entries()
	var procs, papers []*bibtex.Entry
	for _, e := range entries {
		r.result.Stats.ByType[e.Type]++
		if e.Type == bibtex.TypeProceedings {
			procs = append(procs, e)
		} else {
			papers = append(papers, e)
		}
	}
	r.result.Stats.Entries = len(entries)

	keyed, renames := r.cleanProceedings(procs)
	r.result.Renames = renames

	resolver := crossref.NewResolver(keyed, renames, c.opts.Template)
	r.cleanPapers(papers, resolver)

	for _, e := range entries {
		prune.Fields(e, r.reporter(e))
	}

	r.result.Stats.Warnings = r.counter.warnings
	r.result.Stats.Infos = r.counter.infos
	return r.result
}

// cleanProceedings is the first stage. It returns the proceedings as seen
// by their dependents and the frozen rename map.
func (r *run) cleanProceedings(entries []*bibtex.Entry) ([]*citekey.Proceedings, crossref.RenameMap) {
	procs := make([]*citekey.Proceedings, 0, len(entries))
	for _, e := range entries {
		conf, ok := citekey.ExtractConference(e, r.opts.Template, r.reporter(e))
		procs = append(procs, &citekey.Proceedings{Entry: e, Conference: conf, Parsed: ok})
		if !ok && r.opts.ReplaceKeys {
			// The entry keeps its key; nothing generated later may take it
			r.gen.Reserve(e.Key)
		}
	}

	var renames crossref.RenameBuilder
	for _, p := range procs {
		rep := r.reporter(p.Entry)
		if !p.Parsed {
			rep.Warnf("cannot derive a key from the title, reporting %s and keeping key %q", citekey.MarkerKey, p.Entry.Key)
			continue
		}
		old := p.Entry.Key
		if r.applyKey(p.Entry, r.gen.ProceedingsKey(p.Conference), rep) {
			renames.Record(old, p.Entry.Key)
		}
	}
	return procs, renames.Freeze()
}

// cleanPapers is the second stage: normalize fields, link proceedings and
// derive keys, in document order.
func (r *run) cleanPapers(entries []*bibtex.Entry, resolver *crossref.Resolver) {
	for _, e := range entries {
		rep := r.reporter(e)

		if title, ok := e.Get("title"); ok {
			if cleaned := normalize.Title(title, rep); cleaned != title {
				e.Set("title", cleaned)
				rep.Infof("rephrased title: %s", cleaned)
			}
		}
		for _, field := range []string{"author", "editor"} {
			if people, ok := e.Get(field); ok {
				if cleaned := normalize.Authors(people, rep); cleaned != people {
					e.Set(field, cleaned)
					rep.Infof("rephrased %s: %s", field, cleaned)
				}
			}
		}
		if e.Type != bibtex.TypeInproceedings || e.Has("journal") {
			normalize.Journal(e, rep)
		}

		proc := resolver.Resolve(e, rep)
		parts := r.gen.PaperParts(e, proc, rep)
		r.applyKey(e, r.gen.PaperKey(parts), rep)
	}
}

// applyKey records the computed key and, when keys are replaced, assigns
// it. It reports whether the entry's key changed.
func (r *run) applyKey(e *bibtex.Entry, key string, rep remark.Reporter) bool {
	change := KeyChange{Original: e.OriginalKey(), Computed: key}
	defer func() { r.result.Keys = append(r.result.Keys, change) }()

	if !r.opts.ReplaceKeys {
		if key != e.Key {
			rep.Infof("suggested key: %s", key)
		}
		return false
	}
	change.Applied = true
	if key == e.Key {
		return false
	}
	e.Key = key
	r.result.Stats.KeysChanged++
	rep.Infof("rephrased key: %s", key)
	return true
}

func (r *run) reporter(e *bibtex.Entry) remark.Reporter {
	return remark.For(r.counter, e.OriginalKey())
}

// countingSink counts remarks by severity on their way to the real sink.
type countingSink struct {
	next     remark.Sink
	warnings int
	infos    int
}

func (s *countingSink) Record(rm remark.Remark) {
	if rm.Severity == remark.Warning {
		s.warnings++
	} else {
		s.infos++
	}
	s.next.Record(rm)
}
