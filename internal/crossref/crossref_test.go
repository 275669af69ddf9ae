package crossref

import (
	"testing"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/remark"
)

func newProceedings(key string) *citekey.Proceedings {
	e := bibtex.NewEntry(bibtex.TypeProceedings, key)
	return &citekey.Proceedings{
		Entry:      e,
		Conference: citekey.Conference{Abbrev: "ICML", YearAbbrev: "20"},
		Parsed:     true,
	}
}

func paper(key, crossref string) *bibtex.Entry {
	e := bibtex.NewEntry(bibtex.TypeInproceedings, key)
	if crossref != "" {
		e.Set("crossref", crossref)
	}
	return e
}

func TestRenameBuilder(t *testing.T) {
	var b RenameBuilder
	b.Record("oldkey", "ICML20")
	b.Record("same", "same")
	m := b.Freeze()

	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	if got, ok := m.Lookup("oldkey"); !ok || got != "ICML20" {
		t.Errorf("Lookup(oldkey) = %q, %v, want ICML20", got, ok)
	}
	if _, ok := m.Lookup("same"); ok {
		t.Error("unchanged keys should not be recorded")
	}
	if got := m.Renames(); len(got) != 1 || got[0] != (Rename{Old: "oldkey", New: "ICML20"}) {
		t.Errorf("Renames() = %v", got)
	}
}

func TestRenameBuilder_Empty(t *testing.T) {
	var b RenameBuilder
	m := b.Freeze()
	if _, ok := m.Lookup("x"); ok || m.Len() != 0 {
		t.Error("empty RenameMap should have no entries")
	}
}

func TestResolve_RenamePropagation(t *testing.T) {
	proc := newProceedings("oldkey")
	proc.Entry.Key = "ICML20"
	other := newProceedings("neurips2020")

	var b RenameBuilder
	b.Record("oldkey", "ICML20")
	r := NewResolver([]*citekey.Proceedings{proc, other}, b.Freeze(), citekey.Short)

	linked := paper("a", "oldkey")
	untouched := paper("b", "neurips2020")

	if got := r.Resolve(linked, remark.For(nil, "a")); got != proc {
		t.Errorf("Resolve() = %v, want the renamed proceedings", got)
	}
	if got := linked.Value("crossref"); got != "ICML20" {
		t.Errorf("crossref = %q, want ICML20", got)
	}

	if got := r.Resolve(untouched, remark.For(nil, "b")); got != other {
		t.Errorf("Resolve() = %v, want neurips2020", got)
	}
	if got := untouched.Value("crossref"); got != "neurips2020" {
		t.Errorf("crossref of an entry pointing elsewhere changed to %q", got)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	proc := newProceedings("ICML2020")
	r := NewResolver([]*citekey.Proceedings{proc}, (&RenameBuilder{}).Freeze(), citekey.Short)

	var c remark.Collector
	if got := r.Resolve(paper("a", "icml2020"), remark.For(&c, "a")); got != proc {
		t.Errorf("Resolve() should match keys case-insensitively")
	}
	if len(c.Remarks) != 0 {
		t.Errorf("unexpected remarks: %v", c.Messages())
	}
}

func TestResolve_Missing(t *testing.T) {
	r := NewResolver(nil, (&RenameBuilder{}).Freeze(), citekey.Full)

	tests := []struct {
		name     string
		entry    *bibtex.Entry
		warnings int
		infos    int
	}{
		{"no crossref", paper("a", ""), 1, 0},
		{"unknown target", paper("b", "nowhere"), 1, 0},
		{"misc without crossref", bibtex.NewEntry(bibtex.TypeMisc, "c"), 0, 0},
	}

	hardcoded := paper("d", "")
	hardcoded.Set("booktitle", "Some Conference")
	tests = append(tests, struct {
		name     string
		entry    *bibtex.Entry
		warnings int
		infos    int
	}{"hardcoded booktitle", hardcoded, 1, 1})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c remark.Collector
			if got := r.Resolve(tt.entry, remark.For(&c, tt.entry.Key)); got != nil {
				t.Errorf("Resolve() = %v, want nil", got)
			}
			if c.Count(remark.Warning) != tt.warnings || c.Count(remark.Info) != tt.infos {
				t.Errorf("remarks = %v, want %d warnings and %d infos", c.Messages(), tt.warnings, tt.infos)
			}
		})
	}
}
