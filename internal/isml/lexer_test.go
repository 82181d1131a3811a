package isml

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// collect drains a lexer into its tokens, EOF included.
func collect(t *testing.T, l *Lexer) []Token {
	t.Helper()
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks
		}
	}
}

func pos(line, col int) Position {
	return Position{File: "t.isml", Line: line, Column: col}
}

func TestLexer_Tokens(t *testing.T) {
	type tc struct {
		input    string
		expected []Token
	}

	tests := map[string]tc{
		"empty": {
			input:    "",
			expected: []Token{{Type: TokenEOF, Pos: pos(1, 1)}},
		},
		"plain html": {
			input: "<p class=\"x\">hi</p>",
			expected: []Token{
				{Type: TokenText, Text: "<p class=\"x\">hi</p>", Pos: pos(1, 1)},
				{Type: TokenEOF, Pos: pos(1, 20)},
			},
		},
		"tag with literal and expression": {
			input: `<isprint value="#Product:Name#" encoding="off">`,
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind: TagPrint,
					Pos:  pos(1, 1),
					Attrs: NewAttributeSet(
						Attribute{Name: "value", Value: Expression("Product:Name")},
						Attribute{Name: "encoding", Value: Literal("off")},
					),
				}},
				{Type: TokenEOF, Pos: pos(1, 48)},
			},
		},
		"quotes inside expression": {
			input: `<isprint value="#localizeText("account.title")#" encoding="on"/>`,
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind: TagPrint,
					Pos:  pos(1, 1),
					Attrs: NewAttributeSet(
						Attribute{Name: "value", Value: Expression(`localizeText("account.title")`)},
						Attribute{Name: "encoding", Value: Literal("on")},
					),
				}},
				{Type: TokenEOF, Pos: pos(1, 65)},
			},
		},
		"quoted hash inside expression": {
			input: `<isif condition="#a EQ "#"#">x</isif>`,
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind:  TagIf,
					Pos:   pos(1, 1),
					Attrs: NewAttributeSet(Attribute{Name: "condition", Value: Expression(`a EQ "#"`)}),
				}},
				{Type: TokenText, Text: "x", Pos: pos(1, 30)},
				{Type: TokenTag, Pos: pos(1, 31), Tag: &Tag{Kind: TagIfEnd, Pos: pos(1, 31)}},
				{Type: TokenEOF, Pos: pos(1, 38)},
			},
		},
		"case insensitive names": {
			input: "<ISIF condition=\"#true#\"></ISIF>",
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind:  TagIf,
					Pos:   pos(1, 1),
					Attrs: NewAttributeSet(Attribute{Name: "condition", Value: Expression("true")}),
				}},
				{Type: TokenTag, Pos: pos(1, 26), Tag: &Tag{Kind: TagIfEnd, Pos: pos(1, 26)}},
				{Type: TokenEOF, Pos: pos(1, 33)},
			},
		},
		"custom tag": {
			input: "<isBox title=\"a\"/></isbox>",
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind:  TagCustom,
					Name:  "box",
					Pos:   pos(1, 1),
					Attrs: NewAttributeSet(Attribute{Name: "title", Value: Literal("a")}),
				}},
				{Type: TokenTag, Pos: pos(1, 19), Tag: &Tag{Kind: TagCustomEnd, Name: "box", Pos: pos(1, 19)}},
				{Type: TokenEOF, Pos: pos(1, 27)},
			},
		},
		"tag inside html attribute": {
			input: "<a href=\"<isprint value=\"#u#\">\">",
			expected: []Token{
				{Type: TokenText, Text: "<a href=\"", Pos: pos(1, 1)},
				{Type: TokenTag, Pos: pos(1, 10), Tag: &Tag{
					Kind:  TagPrint,
					Pos:   pos(1, 10),
					Attrs: NewAttributeSet(Attribute{Name: "value", Value: Expression("u")}),
				}},
				{Type: TokenText, Text: "\">", Pos: pos(1, 31)},
				{Type: TokenEOF, Pos: pos(1, 33)},
			},
		},
		"isml comment dropped": {
			input: "a<!--- hidden\n--->b",
			expected: []Token{
				{Type: TokenText, Text: "a", Pos: pos(1, 1)},
				{Type: TokenText, Text: "b", Pos: pos(2, 5)},
				{Type: TokenEOF, Pos: pos(2, 6)},
			},
		},
		"iscomment block dropped": {
			input: "a<iscomment><isif condition=\"#x#\"></iscomment>b",
			expected: []Token{
				{Type: TokenText, Text: "a", Pos: pos(1, 1)},
				{Type: TokenText, Text: "b", Pos: pos(1, 47)},
				{Type: TokenEOF, Pos: pos(1, 48)},
			},
		},
		"html comment is text": {
			input: "<!-- c -->",
			expected: []Token{
				{Type: TokenText, Text: "<!-- c -->", Pos: pos(1, 1)},
				{Type: TokenEOF, Pos: pos(1, 11)},
			},
		},
		"repeated attribute kept in order": {
			input: `<ismodule attribute="a" attribute="b">`,
			expected: []Token{
				{Type: TokenTag, Pos: pos(1, 1), Tag: &Tag{
					Kind: TagModule,
					Pos:  pos(1, 1),
					Attrs: NewAttributeSet(
						Attribute{Name: "attribute", Value: Literal("a")},
						Attribute{Name: "attribute", Value: Literal("b")},
					),
				}},
				{Type: TokenEOF, Pos: pos(1, 39)},
			},
		},
		"lines advance": {
			input: "x\n  <isbreak>",
			expected: []Token{
				{Type: TokenText, Text: "x\n  ", Pos: pos(1, 1)},
				{Type: TokenTag, Pos: pos(2, 3), Tag: &Tag{Kind: TagBreak, Pos: pos(2, 3)}},
				{Type: TokenEOF, Pos: pos(2, 12)},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := collect(t, NewLexer("t.isml", []byte(tt.input)))
			if diff := cmp.Diff(tt.expected, got, cmp.AllowUnexported(AttributeSet{}), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexer_Unescape(t *testing.T) {
	bs := string(rune(92))
	// "café <isprint value="#"ü"#">"
	input := "caf" + bs + "u00e9 <isprint value=\"#'" + bs + "u00fc'#\">"

	got := collect(t, NewLexer("t.isml", []byte(input)))
	if len(got) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(got), got)
	}
	if got[0].Text != "café " {
		t.Errorf("text = %q, want %q", got[0].Text, "café ")
	}
	if got[1].Pos.Column != 6 {
		t.Errorf("tag column = %d, want 6 (an escape counts as one column)", got[1].Pos.Column)
	}
	v, _ := got[1].Tag.Attrs.Get("value")
	if v.Text != "'ü'" || !v.Expr {
		t.Errorf("value = %+v, want expression 'ü'", v)
	}
}

func TestLexer_Errors(t *testing.T) {
	type tc struct {
		input string
		pos   Position
	}

	tests := map[string]tc{
		"unterminated tag":       {input: "ab<isif condition=\"#x#\"", pos: pos(1, 3)},
		"unterminated comment":   {input: "<!--- open", pos: pos(1, 1)},
		"unterminated block":     {input: "\n<iscomment> never closed", pos: pos(2, 1)},
		"closing a leaf tag":     {input: "</isprint>", pos: pos(1, 1)},
		"closing iscomment bare": {input: "</iscomment>", pos: pos(1, 1)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewLexer("t.isml", []byte(tt.input))
			var err error
			for err == nil {
				var tok Token
				tok, err = l.Next()
				if err == nil && tok.Type == TokenEOF {
					t.Fatal("expected an error, got EOF")
				}
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %v is not *Error", err)
			}
			if e.Kind != SyntaxFault {
				t.Errorf("kind = %v, want %v", e.Kind, SyntaxFault)
			}
			if e.Pos != tt.pos {
				t.Errorf("pos = %v, want %v", e.Pos, tt.pos)
			}
			if _, again := l.Next(); again != err {
				t.Errorf("second Next() = %v, want the same error", again)
			}
		})
	}
}
