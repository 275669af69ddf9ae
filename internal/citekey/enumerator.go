package citekey

import "strings"

// Enumerator tracks the keys handed out during one run so that keys
// sharing a base stay unique. The first key of a base carries no suffix;
// later ones get a, b, ..., z, aa, ab, ... in the order they are asked for.
// Keys are compared case-insensitively, as BibTeX does.
type Enumerator struct {
	taken map[string]bool
}

// NewEnumerator creates an empty Enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{taken: make(map[string]bool)}
}

// Reserve marks a key as used without deriving it from a base.
func (en *Enumerator) Reserve(key string) {
	en.taken[strings.ToLower(key)] = true
}

// Taken reports whether key has been handed out or reserved.
func (en *Enumerator) Taken(key string) bool {
	return en.taken[strings.ToLower(key)]
}

// Next returns base with the smallest free suffix and marks it used.
func (en *Enumerator) Next(base string) string {
	for i := 0; ; i++ {
		key := base + Suffix(i)
		if !en.Taken(key) {
			en.Reserve(key)
			return key
		}
	}
}

// Suffix returns the i-th enumeration suffix: "" for 0, then a..z, aa, ab...
func Suffix(i int) string {
	var b []byte
	for n := i; n > 0; n /= 26 {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
	}
	return string(b)
}
