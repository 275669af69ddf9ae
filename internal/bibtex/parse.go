package bibtex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed bibtex")

// ParseError reports malformed input with the line it was found on.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// ParseFile parses the BibTeX document at path.
func ParseFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bib file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a BibTeX document. Field text is kept verbatim, including
// nested braces. @comment, @string and @preamble blocks and any text
// between entries are kept as raw blocks.
func Parse(r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bib file: %w", err)
	}
	p := &parser{src: string(data)}
	return p.parse()
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorAt(pos int, format string, args ...interface{}) error {
	if pos > len(p.src) {
		pos = len(p.src)
	}
	return &ParseError{
		Line: 1 + strings.Count(p.src[:pos], "\n"),
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *parser) parse() (*Library, error) {
	lib := &Library{}
	for p.pos < len(p.src) {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			lib.addRaw(p.src[p.pos:])
			break
		}
		if at > 0 {
			lib.addRaw(p.src[p.pos : p.pos+at])
		}
		p.pos += at
		start := p.pos
		p.pos++

		entryType := p.readWhile(isIdentChar)
		p.skipSpace()
		if entryType == "" || p.pos >= len(p.src) || (p.src[p.pos] != '{' && p.src[p.pos] != '(') {
			// A stray '@' in free text
			lib.addRaw(p.src[start:p.pos])
			continue
		}

		switch strings.ToLower(entryType) {
		case "comment", "string", "preamble":
			end, err := p.matchingClose(p.pos)
			if err != nil {
				return nil, err
			}
			p.pos = end + 1
			lib.addRaw(p.src[start:p.pos])
		default:
			e, err := p.parseEntry(entryType)
			if err != nil {
				return nil, err
			}
			lib.Add(e)
		}
	}
	return lib, nil
}

func (p *parser) parseEntry(entryType string) (*Entry, error) {
	closer := byte('}')
	if p.src[p.pos] == '(' {
		closer = ')'
	}
	open := p.pos
	p.pos++

	keyStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != closer {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, p.errorAt(open, "unterminated @%s entry", entryType)
	}
	key := strings.TrimSpace(p.src[keyStart:p.pos])
	if key == "" {
		return nil, p.errorAt(open, "@%s entry without a key", entryType)
	}

	e := NewEntry(entryType, key)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorAt(open, "unterminated entry %q", key)
		}
		if p.src[p.pos] == closer {
			p.pos++
			return e, nil
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}

		nameStart := p.pos
		name := p.readWhile(isFieldNameChar)
		if name == "" {
			return nil, p.errorAt(nameStart, "expected field name in entry %q", key)
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return nil, p.errorAt(nameStart, "expected '=' after field %q in entry %q", name, key)
		}
		p.pos++

		f, err := p.readValue(closer)
		if err != nil {
			return nil, err
		}
		f.Name = name
		e.addField(f)
	}
}

// readValue reads one field value, possibly a # concatenation. A single
// braced or quoted part keeps its delimiter; anything else is kept bare.
func (p *parser) readValue(closer byte) (Field, error) {
	p.skipSpace()
	start := p.pos
	var f Field
	parts := 0
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Field{}, p.errorAt(start, "unterminated field value")
		}
		switch p.src[p.pos] {
		case '{':
			end, err := p.matchingClose(p.pos)
			if err != nil {
				return Field{}, err
			}
			f = Field{Value: p.src[p.pos+1 : end], Delim: Braces}
			p.pos = end + 1
		case '"':
			end, err := p.closingQuote(p.pos)
			if err != nil {
				return Field{}, err
			}
			f = Field{Value: p.src[p.pos+1 : end], Delim: Quotes}
			p.pos = end + 1
		default:
			s := p.pos
			for p.pos < len(p.src) && !isValueStop(p.src[p.pos], closer) {
				p.pos++
			}
			if p.pos == s {
				return Field{}, p.errorAt(s, "empty field value")
			}
			f = Field{Value: p.src[s:p.pos], Delim: Bare}
		}
		parts++

		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		break
	}

	if parts > 1 {
		return Field{Value: strings.TrimSpace(p.src[start:p.pos]), Delim: Bare}, nil
	}
	return f, nil
}

// matchingClose returns the index of the delimiter closing the '{' or '('
// at open. Braces nest; parentheses only count outside braces.
func (p *parser) matchingClose(open int) (int, error) {
	if p.src[open] == '(' {
		depth, braces := 0, 0
		for i := open; i < len(p.src); i++ {
			switch p.src[i] {
			case '{':
				braces++
			case '}':
				braces--
			case '(':
				if braces == 0 {
					depth++
				}
			case ')':
				if braces == 0 {
					depth--
					if depth == 0 {
						return i, nil
					}
				}
			}
		}
		return 0, p.errorAt(open, "unbalanced parentheses")
	}

	depth := 0
	for i := open; i < len(p.src); i++ {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, p.errorAt(open, "unbalanced braces")
}

// closingQuote returns the index of the '"' ending the quoted value at
// open. Quotes inside braces do not terminate the value.
func (p *parser) closingQuote(open int) (int, error) {
	depth := 0
	for i := open + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, p.errorAt(open, "unterminated quoted value")
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) readWhile(ok func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.src) && ok(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// addRaw appends text as a raw block, merging with a preceding raw block.
func (l *Library) addRaw(text string) {
	if text == "" {
		return
	}
	if n := len(l.Blocks); n > 0 && l.Blocks[n-1].Entry == nil {
		l.Blocks[n-1].Raw += text
		return
	}
	l.Blocks = append(l.Blocks, Block{Raw: text})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func isFieldNameChar(c byte) bool {
	return isIdentChar(c) || c == ':' || c == '.' || c == '+'
}

func isValueStop(c, closer byte) bool {
	return c == ',' || c == closer || c == '#' || isSpace(c)
}
