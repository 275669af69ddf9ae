// Package bibtex parses BibTeX documents into entries and writes them back.
package bibtex

import "strings"

// Entry types handled by the cleaner.
const (
	TypeProceedings   = "proceedings"
	TypeArticle       = "article"
	TypeInproceedings = "inproceedings"
	TypeMisc          = "misc"
)

// Delimiter records how a field value was written in the source.
type Delimiter int

const (
	Braces Delimiter = iota // {value}
	Quotes                  // "value"
	Bare                    // 2020, jan, or a # concatenation kept verbatim
)

// Field is a single name = value pair of an entry.
type Field struct {
	Name  string    // Lower-cased field name
	Value string    // Text between the outer delimiters, verbatim
	Delim Delimiter // Delimiter used when writing the value back
}

// Entry is one bibliographic record. Field names are case-insensitive.
type Entry struct {
	Type string // Lower-cased entry type (article, inproceedings, ...)
	Key  string // Citation key, may be reassigned while cleaning

	originalKey string
	fields      map[string]*Field
	order       []string
}

// NewEntry creates an entry whose original key is key.
func NewEntry(entryType, key string) *Entry {
	return &Entry{
		Type:        strings.ToLower(strings.TrimSpace(entryType)),
		Key:         key,
		originalKey: key,
		fields:      make(map[string]*Field),
	}
}

// OriginalKey returns the key the entry had when it was loaded.
func (e *Entry) OriginalKey() string {
	return e.originalKey
}

// Has reports whether the field is present.
func (e *Entry) Has(name string) bool {
	_, ok := e.fields[strings.ToLower(name)]
	return ok
}

// Get returns the value of a field and whether it is present.
func (e *Entry) Get(name string) (string, bool) {
	f, ok := e.fields[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return f.Value, true
}

// Value returns the value of a field, or "" if absent.
func (e *Entry) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

// Field returns a copy of the named field.
func (e *Entry) Field(name string) (Field, bool) {
	f, ok := e.fields[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Set assigns a field value. An existing field keeps its delimiter unless
// it was bare; new fields are written with braces.
func (e *Entry) Set(name, value string) {
	name = strings.ToLower(name)
	if f, ok := e.fields[name]; ok {
		f.Value = value
		if f.Delim == Bare {
			f.Delim = Braces
		}
		return
	}
	e.addField(Field{Name: name, Value: value, Delim: Braces})
}

// Delete removes a field and reports whether it was present.
func (e *Entry) Delete(name string) bool {
	name = strings.ToLower(name)
	if _, ok := e.fields[name]; !ok {
		return false
	}
	delete(e.fields, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// FieldNames returns the field names in the order they were added.
func (e *Entry) FieldNames() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// addField stores f, replacing any field of the same name in place.
func (e *Entry) addField(f Field) {
	f.Name = strings.ToLower(f.Name)
	if existing, ok := e.fields[f.Name]; ok {
		*existing = f
		return
	}
	e.fields[f.Name] = &f
	e.order = append(e.order, f.Name)
}

// Block is one top-level item of a document: either an entry or raw text
// (comments, @string, @preamble, text between entries) kept verbatim.
type Block struct {
	Entry *Entry
	Raw   string
}

// Library is a parsed document.
type Library struct {
	Blocks []Block
}

// Add appends an entry to the library.
func (l *Library) Add(e *Entry) {
	l.Blocks = append(l.Blocks, Block{Entry: e})
}

// Entries returns the entries in document order.
func (l *Library) Entries() []*Entry {
	var entries []*Entry
	for _, b := range l.Blocks {
		if b.Entry != nil {
			entries = append(entries, b.Entry)
		}
	}
	return entries
}
