package cleaner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/remark"
)

const testBib = `% conference proceedings
@proceedings{oldkey,
  title     = {Proc. of {ICML}'20},
  booktitle = {Proc. of {ICML}'20},
  year      = {2020},
  publisher = {PMLR},
}

@proceedings{ws2020,
  title = {Some Workshop},
  year  = {2020},
}

@inproceedings{smith1,
  title    = {deep learning},
  author   = {John Smith},
  crossref = {oldkey},
  year     = {2020},
  doi      = {10.1000/1},
}

@inproceedings{smith2,
  title    = {shallow learning},
  author   = {Smith, Jane},
  crossref = {oldkey},
  pages    = {1--10},
}

@inproceedings{smith3,
  title    = {medium learning},
  author   = {Adam Smith and Bob Jones},
  crossref = {oldkey},
}

@inproceedings{lee,
  title    = {workshop paper},
  author   = {Ann Lee},
  crossref = {ws2020},
  year     = {2020},
}

@article{doe,
  title   = {a preprint},
  author  = {Jane Doe},
  journal = {CoRR},
  volume  = {abs/2101.00001},
  year    = {2021},
}
`

func parse(t *testing.T) *bibtex.Library {
	t.Helper()
	lib, err := bibtex.Parse(strings.NewReader(testBib))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return lib
}

func byOriginalKey(lib *bibtex.Library) map[string]*bibtex.Entry {
	m := make(map[string]*bibtex.Entry)
	for _, e := range lib.Entries() {
		m[e.OriginalKey()] = e
	}
	return m
}

func TestRun_ReplaceKeys(t *testing.T) {
	lib := parse(t)
	var c remark.Collector
	res := New(Options{Template: citekey.Short, ReplaceKeys: true}, &c).Run(lib)
	entries := byOriginalKey(lib)

	wantKeys := map[string]string{
		"oldkey": "ICML20",
		"ws2020": "ws2020",
		"smith1": "Smith-ICML2020",
		"smith2": "Smith-ICML2020a",
		"smith3": "Smith-ICML2020b",
		"lee":    "Lee-XXX2020",
		"doe":    "Doe-arXiv2021",
	}
	for orig, want := range wantKeys {
		if got := entries[orig].Key; got != want {
			t.Errorf("key of %s = %q, want %q", orig, got, want)
		}
	}

	for _, k := range []string{"smith1", "smith2", "smith3"} {
		if got := entries[k].Value("crossref"); got != "ICML20" {
			t.Errorf("crossref of %s = %q, want ICML20", k, got)
		}
	}
	if got := entries["lee"].Value("crossref"); got != "ws2020" {
		t.Errorf("crossref of lee = %q, want ws2020", got)
	}

	if newKey, ok := res.Renames.Lookup("oldkey"); !ok || newKey != "ICML20" || res.Renames.Len() != 1 {
		t.Errorf("Renames = %v, want only oldkey -> ICML20", res.Renames.Renames())
	}
	if res.Stats.Entries != 7 || res.Stats.KeysChanged != 6 {
		t.Errorf("Stats = %+v, want 7 entries and 6 changed keys", res.Stats)
	}
	if res.Stats.ByType[bibtex.TypeInproceedings] != 4 {
		t.Errorf("ByType = %v, want 4 inproceedings", res.Stats.ByType)
	}
	if res.Stats.Warnings != c.Count(remark.Warning) || res.Stats.Infos != c.Count(remark.Info) {
		t.Errorf("Stats counts %d/%d disagree with the collected remarks", res.Stats.Warnings, res.Stats.Infos)
	}
}

func TestRun_FieldsNormalizedAndPruned(t *testing.T) {
	lib := parse(t)
	New(Options{Template: citekey.Short, ReplaceKeys: true}, nil).Run(lib)
	entries := byOriginalKey(lib)

	smith1 := entries["smith1"]
	if got := smith1.Value("title"); got != "Deep Learning" {
		t.Errorf("title = %q, want Deep Learning", got)
	}
	if got := smith1.Value("author"); got != "J. Smith" {
		t.Errorf("author = %q, want J. Smith", got)
	}
	if smith1.Has("doi") || smith1.Has("year") {
		t.Errorf("smith1 kept pruned fields: %v", smith1.FieldNames())
	}
	if got := entries["smith3"].Value("author"); got != "A. Smith and B. Jones" {
		t.Errorf("author list = %q", got)
	}

	if entries["oldkey"].Has("publisher") {
		t.Error("proceedings kept publisher")
	}
	if !entries["oldkey"].Has("year") {
		t.Error("proceedings lost year")
	}

	doe := entries["doe"]
	if got := doe.Value("journal"); got != "arXiv:2101.00001" {
		t.Errorf("journal = %q, want arXiv:2101.00001", got)
	}
	if doe.Has("volume") {
		t.Error("CoRR volume should be dropped after the arXiv rewrite")
	}
}

func TestRun_SuggestOnly(t *testing.T) {
	lib := parse(t)
	var c remark.Collector
	res := New(Options{Template: citekey.Short}, &c).Run(lib)
	entries := byOriginalKey(lib)

	for orig, e := range entries {
		if e.Key != orig {
			t.Errorf("key of %s changed to %q", orig, e.Key)
		}
	}
	if got := entries["smith2"].Value("crossref"); got != "oldkey" {
		t.Errorf("crossref = %q, want oldkey", got)
	}
	if res.Stats.KeysChanged != 0 || res.Renames.Len() != 0 {
		t.Errorf("Stats = %+v, Renames = %d, want no changes", res.Stats, res.Renames.Len())
	}

	suggested := 0
	for _, r := range c.Remarks {
		if strings.HasPrefix(r.Message, "suggested key: ") {
			suggested++
		}
	}
	if suggested != 6 {
		t.Errorf("got %d key suggestions, want 6", suggested)
	}
	for _, k := range res.Keys {
		if k.Applied {
			t.Errorf("key change %+v applied in suggest-only mode", k)
		}
	}
}

func TestRun_CommaFormSurname(t *testing.T) {
	lib, err := bibtex.Parse(strings.NewReader(`@proceedings{icml,
  title     = {Proc. of {ICML}'20},
  booktitle = {Proc. of {ICML}'20},
  year      = {2020},
}

@inproceedings{a,
  title    = {convolutional networks},
  author   = {Le Cun, Yann and van der Berg, Jan},
  crossref = {icml},
}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	New(Options{Template: citekey.Short, ReplaceKeys: true}, nil).Run(lib)
	e := byOriginalKey(lib)["a"]

	if got := e.Value("author"); got != "Y. {Le Cun} and J. {van der Berg}" {
		t.Errorf("author = %q, want full surnames", got)
	}
	if e.Key != "LeCun-ICML2020" {
		t.Errorf("key = %q, want LeCun-ICML2020", e.Key)
	}
}

func TestRun_RemarksTaggedWithOriginalKey(t *testing.T) {
	lib := parse(t)
	var c remark.Collector
	New(Options{Template: citekey.Short, ReplaceKeys: true}, &c).Run(lib)

	var found, marker bool
	for _, r := range c.Remarks {
		if r.EntryKey == "oldkey" && r.Message == "rephrased key: ICML20" {
			found = true
		}
		if r.EntryKey == "ws2020" && r.Severity == remark.Warning && strings.Contains(r.Message, citekey.MarkerKey) {
			marker = true
		}
	}
	if !found {
		t.Errorf("no rename remark for oldkey in %v", c.Messages())
	}
	if !marker {
		t.Errorf("no marker warning for ws2020 in %v", c.Messages())
	}
}

func TestRun_UnparsedProceedingsMarkerOnlyReported(t *testing.T) {
	lib := parse(t)
	var c remark.Collector
	res := New(Options{Template: citekey.Short, ReplaceKeys: true}, &c).Run(lib)

	if got := byOriginalKey(lib)["ws2020"].Key; got != "ws2020" {
		t.Errorf("key of ws2020 = %q, want it kept", got)
	}
	for _, e := range lib.Entries() {
		if e.Key == citekey.MarkerKey {
			t.Errorf("entry %s was assigned %s", e.OriginalKey(), citekey.MarkerKey)
		}
	}
	if _, ok := res.Renames.Lookup("ws2020"); ok {
		t.Error("ws2020 should not be renamed")
	}
}

func TestRun_WrongTemplate(t *testing.T) {
	lib := parse(t)
	var c remark.Collector
	New(Options{Template: citekey.Full, ReplaceKeys: true}, &c).Run(lib)
	entries := byOriginalKey(lib)

	if got := entries["oldkey"].Key; got != "oldkey" {
		t.Errorf("proceedings key = %q, want it kept", got)
	}
	if got := entries["smith1"].Key; got != "Smith-XXX2020" {
		t.Errorf("paper key = %q, want Smith-XXX2020", got)
	}
}

func TestRun_OutputRoundTrip(t *testing.T) {
	lib := parse(t)
	New(Options{Template: citekey.Short, ReplaceKeys: true}, nil).Run(lib)

	var buf bytes.Buffer
	if err := bibtex.Write(&buf, lib); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"% conference proceedings",
		"@proceedings{ICML20,",
		"@inproceedings{Smith-ICML2020a,",
		"crossref = {ICML20},",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	again, err := bibtex.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-parsing output: %v", err)
	}
	if len(again.Entries()) != len(lib.Entries()) {
		t.Errorf("re-parsed %d entries, want %d", len(again.Entries()), len(lib.Entries()))
	}
}
