package isml

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/grindlemire/go-isml/internal/charset"
)

// Lexer splits escaped template source into literal text and ISML tags.
//
// Everything that is not an ISML construct is text, HTML markup included, so
// ISML tags may sit inside HTML attribute values. Each ISML tag is read by a
// fresh html.Tokenizer positioned at its '<'.
type Lexer struct {
	filename string
	src      []byte
	pos      int // current byte offset in src
	line     int // current line (1-based)
	column   int // current column (1-based); an escape sequence counts once
	err      error
}

// NewLexer creates a new Lexer over src, which is expected to be the output
// of charset.Escape.
func NewLexer(filename string, src []byte) *Lexer {
	return &Lexer{
		filename: filename,
		src:      src,
		line:     1,
		column:   1,
	}
}

// Next returns the next token. After a fault every call returns the same error.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	for {
		if l.pos >= len(l.src) {
			return Token{Type: TokenEOF, Pos: l.position()}, nil
		}

		if next := l.findConstruct(l.pos); next > l.pos {
			pos := l.position()
			text := string(l.src[l.pos:next])
			l.advance(next)
			return Token{Type: TokenText, Text: charset.Unescape(text), Pos: pos}, nil
		}

		tok, emit, err := l.readConstruct()
		if err != nil {
			l.err = err
			return Token{}, err
		}
		if emit {
			return tok, nil
		}
	}
}

func (l *Lexer) position() Position {
	return Position{File: l.filename, Line: l.line, Column: l.column}
}

// advance moves to offset to, keeping line and column current.
func (l *Lexer) advance(to int) {
	for l.pos < to {
		if l.src[l.pos] == '\n' {
			l.line++
			l.column = 1
			l.pos++
			continue
		}
		n := charset.EscapeLen(l.src, l.pos)
		if n == 0 {
			n = 1
		}
		l.column++
		l.pos += n
	}
}

// findConstruct returns the offset of the next ISML tag or comment at or
// after from, or len(src).
func (l *Lexer) findConstruct(from int) int {
	for i := from; i < len(l.src); i++ {
		if l.src[i] != '<' {
			continue
		}
		rest := l.src[i:]
		switch {
		case hasPrefixFold(rest, "<!---"):
			return i
		case hasPrefixFold(rest, "<is") && len(rest) > 3 && isLetter(rest[3]):
			return i
		case hasPrefixFold(rest, "</is") && len(rest) > 4 && isLetter(rest[4]):
			return i
		}
	}
	return len(l.src)
}

// readConstruct consumes the construct at l.pos. Comments are skipped and
// report emit=false.
func (l *Lexer) readConstruct() (tok Token, emit bool, err error) {
	start := l.position()

	if hasPrefixFold(l.src[l.pos:], "<!---") {
		end := bytes.Index(l.src[l.pos+5:], []byte("--->"))
		if end < 0 {
			return Token{}, false, NewError(SyntaxFault, start, "unterminated ISML comment")
		}
		l.advance(l.pos + 5 + end + 4)
		return Token{}, false, nil
	}

	end, exprs := scanTag(l.src[l.pos:])
	raw := l.src[l.pos : l.pos+end]
	masked := maskExpressions(raw, exprs)

	z := html.NewTokenizer(bytes.NewReader(masked))
	tt := z.Next()
	size := len(z.Raw())
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken && tt != html.EndTagToken {
		return Token{}, false, NewError(SyntaxFault, start, "unterminated tag")
	}
	if size == 0 || l.src[l.pos+size-1] != '>' {
		return Token{}, false, NewError(SyntaxFault, start, "unterminated tag")
	}

	rawName, hasAttr := z.TagName()
	name := strings.TrimPrefix(string(rawName), "is")

	if tt == html.EndTagToken {
		kind, ok := closeTags[name]
		if !ok {
			if _, known := openTags[name]; known || name == "comment" {
				return Token{}, false, NewErrorf(SyntaxFault, start, "unexpected closing tag </is%s>", name)
			}
			kind = TagCustomEnd
		}
		l.advance(l.pos + size)
		tag := &Tag{Kind: kind, Pos: start}
		if kind == TagCustomEnd {
			tag.Name = name
		}
		return Token{Type: TokenTag, Tag: tag, Pos: start}, true, nil
	}

	if name == "comment" {
		return Token{}, false, l.skipComment(start, size)
	}

	var attrs []Attribute
	next := 0
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if next < len(exprs) && bytes.Equal(val, masked[exprs[next][0]:exprs[next][1]]) {
			val = raw[exprs[next][0]:exprs[next][1]]
			next++
		}
		attrs = append(attrs, Attribute{Name: string(key), Value: attributeValue(string(val))})
	}

	kind, ok := openTags[name]
	tag := &Tag{Kind: kind, Pos: start, Attrs: NewAttributeSet(attrs...)}
	if !ok {
		tag.Kind = TagCustom
		tag.Name = name
	}
	l.advance(l.pos + size)
	return Token{Type: TokenTag, Tag: tag, Pos: start}, true, nil
}

// skipComment drops an <iscomment> block whose opening tag is size bytes long.
func (l *Lexer) skipComment(start Position, size int) error {
	body := l.pos + size
	end := indexFold(l.src[body:], "</iscomment")
	if end < 0 {
		return NewError(SyntaxFault, start, "unterminated iscomment block")
	}
	closeAt := body + end
	gt := bytes.IndexByte(l.src[closeAt:], '>')
	if gt < 0 {
		return NewError(SyntaxFault, start, "unterminated iscomment block")
	}
	l.advance(closeAt + gt + 1)
	return nil
}

// scanTag finds the end of the tag at the start of src, just past its '>',
// or len(src) when it is unterminated. It also returns the [start, end)
// offsets of every double-quoted #...# value. An expression may contain
// double quotes itself; its closing #" must be followed by whitespace, '/'
// or '>'.
func scanTag(src []byte) (int, [][2]int) {
	var exprs [][2]int
	i := 1
	for i < len(src) {
		switch src[i] {
		case '>':
			return i + 1, exprs
		case '=':
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			if j >= len(src) {
				return len(src), exprs
			}
			q := src[j]
			if q != '"' && q != '\'' {
				i = j
				continue
			}
			if q == '"' && j+1 < len(src) && src[j+1] == '#' {
				if k := expressionEnd(src, j+2); k >= 0 {
					exprs = append(exprs, [2]int{j + 1, k + 1})
					i = k + 2
					continue
				}
			}
			closeAt := bytes.IndexByte(src[j+1:], q)
			if closeAt < 0 {
				return len(src), exprs
			}
			i = j + 1 + closeAt + 1
			continue
		}
		i++
	}
	return len(src), exprs
}

// expressionEnd returns the offset of the '#' closing an expression value
// that starts at from, or -1. The search stops at the next ISML tag.
func expressionEnd(src []byte, from int) int {
	for k := from; k+1 < len(src); k++ {
		if src[k] == '<' && (hasPrefixFold(src[k:], "<is") || hasPrefixFold(src[k:], "</is")) {
			return -1
		}
		if src[k] != '#' || src[k+1] != '"' {
			continue
		}
		if k+2 == len(src) || isSpace(src[k+2]) || src[k+2] == '/' || src[k+2] == '>' {
			return k
		}
	}
	return -1
}

// maskExpressions hides the inside of each expression from the tokenizer.
// The result has the same length as raw.
func maskExpressions(raw []byte, exprs [][2]int) []byte {
	if len(exprs) == 0 {
		return raw
	}
	masked := bytes.Clone(raw)
	for _, e := range exprs {
		for i := e[0] + 1; i < e[1]-1; i++ {
			masked[i] = 'x'
		}
	}
	return masked
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// attributeValue classifies a raw attribute value: #...# is an expression.
func attributeValue(raw string) AttributeValue {
	if len(raw) >= 2 && raw[0] == '#' && raw[len(raw)-1] == '#' {
		return Expression(charset.Unescape(raw[1 : len(raw)-1]))
	}
	return Literal(charset.Unescape(raw))
}

func hasPrefixFold(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && bytes.EqualFold(b[:len(prefix)], []byte(prefix))
}

func indexFold(b []byte, needle string) int {
	for i := 0; i+len(needle) <= len(b); i++ {
		if hasPrefixFold(b[i:], needle) {
			return i
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
