package fieldtext

import (
	"reflect"
	"testing"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  plain  ", "plain"},
		{"Deep\n   Learning", "Deep Learning"},
		{"a\t\tb\r\nc", "a b c"},
		{"Proc. of\n {ICML}'20\n", "Proc. of {ICML}'20"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Collapse(tt.in); got != tt.want {
				t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one two", []string{"one", "two"}},
		{"a  {Deep Learning} approach", []string{"a", "{Deep Learning}", "approach"}},
		{`M{\"u}ller and {van der Berg}`, []string{`M{\"u}ller`, "and", "{van der Berg}"}},
		{"{unbalanced", []string{"{unbalanced"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Words(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Words(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitTop(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A. Smith", []string{"A. Smith"}},
		{"A. Smith and B. Jones", []string{"A. Smith", "B. Jones"}},
		{"{Barnes and Noble} and J. Doe", []string{"{Barnes and Noble}", "J. Doe"}},
		{"x and ", []string{"x", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SplitTop(tt.in, " and "); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTop(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsProtected(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"plain", false},
		{"{BERT}", true},
		{`\emph`, true},
		{"Learning:", false},
	}

	for _, tt := range tests {
		if got := IsProtected(tt.word); got != tt.want {
			t.Errorf("IsProtected(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}
