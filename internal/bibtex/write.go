package bibtex

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// FieldOrder is the order fields are written in. Fields not listed follow
// in alphabetical order.
var FieldOrder = []string{
	"title", "author", "editor", "booktitle", "crossref",
	"journal", "volume", "number", "pages", "year", "note",
}

// ToBibTeX renders a single entry.
func ToBibTeX(e *Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type, e.Key))
	for _, name := range orderedFields(e) {
		f := e.fields[name]
		b.WriteString(fmt.Sprintf("  %s = %s,\n", f.Name, formatValue(*f)))
	}
	b.WriteString("}")

	return b.String()
}

// Write renders the library. Raw blocks are written verbatim so comments
// and spacing between entries survive a round trip.
func Write(w io.Writer, lib *Library) error {
	var b strings.Builder
	prevEntry := false
	for _, block := range lib.Blocks {
		if block.Entry == nil {
			b.WriteString(block.Raw)
			prevEntry = false
			continue
		}
		if prevEntry {
			b.WriteString("\n\n")
		}
		b.WriteString(ToBibTeX(block.Entry))
		prevEntry = true
	}

	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing bibtex: %w", err)
	}
	return nil
}

// WriteFile writes the library to path, replacing existing content.
func WriteFile(path string, lib *Library) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bib file: %w", err)
	}
	defer f.Close()

	if err := Write(f, lib); err != nil {
		return err
	}
	return f.Close()
}

func orderedFields(e *Entry) []string {
	rank := make(map[string]int, len(FieldOrder))
	for i, name := range FieldOrder {
		rank[name] = i
	}

	names := e.FieldNames()
	sort.SliceStable(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return names[i] < names[j]
		}
	})
	return names
}

func formatValue(f Field) string {
	switch f.Delim {
	case Quotes:
		return `"` + f.Value + `"`
	case Bare:
		return f.Value
	default:
		return "{" + f.Value + "}"
	}
}
