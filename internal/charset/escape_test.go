package charset

import (
	"testing"
)

func TestEscape(t *testing.T) {
	type tc struct {
		src     []byte
		charset string
		want    string
	}

	tests := map[string]tc{
		"plain ascii": {
			src:     []byte("<isif condition=\"#x#\">\r\n\tok</isif>"),
			charset: UTF8,
			want:    "<isif condition=\"#x#\">\r\n\tok</isif>",
		},
		"latin small e acute": {
			src:     []byte("café"),
			charset: UTF8,
			want:    `caf\u00e9`,
		},
		"utf-8 bom dropped": {
			src:     []byte("\xEF\xBB\xBFa"),
			charset: UTF8,
			want:    "a",
		},
		"surrogate pair": {
			src:     []byte("😀"),
			charset: UTF8,
			want:    `\ud83d\ude00`,
		},
		"control characters": {
			src:     []byte{0x01, 0x7F},
			charset: UTF8,
			want:    `\u0001\u007f`,
		},
		"single byte charset": {
			src:     []byte{'c', 0xE9},
			charset: Latin1,
			want:    `c\u00e9`,
		},
		"windows-1252 euro": {
			src:     []byte{0x80},
			charset: "Cp1252",
			want:    `\u20ac`,
		},
		"utf-16le with bom": {
			src:     []byte{0xFF, 0xFE, 'a', 0x00, 0xE9, 0x00},
			charset: UTF16LE,
			want:    `a\u00e9`,
		},
		"utf-16be with bom": {
			src:     []byte{0xFE, 0xFF, 0x00, 'a'},
			charset: UTF16BE,
			want:    "a",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Escape(tt.src, tt.charset)
			if err != nil {
				t.Fatalf("Escape: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Escape = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscape_UnknownCharset(t *testing.T) {
	if _, err := Escape([]byte("a"), "x-made-up"); err == nil {
		t.Error("expected error for unknown charset")
	}
}

func TestEscapeLen(t *testing.T) {
	type tc struct {
		in   string
		at   int
		want int
	}

	tests := map[string]tc{
		"simple":            {in: `\u0041`, at: 0, want: 6},
		"repeated u":        {in: `x\uuu0041`, at: 1, want: 8},
		"escaped backslash": {in: `\\u0041`, at: 1, want: 0},
		"double backslash":  {in: `\\\u0041`, at: 2, want: 6},
		"short":             {in: `\u004`, at: 0, want: 0},
		"not hex":           {in: `\u00g1`, at: 0, want: 0},
		"no u":              {in: `\x0041`, at: 0, want: 0},
		"not a backslash":   {in: "a", at: 0, want: 0},
		"out of range":      {in: "a", at: 3, want: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := EscapeLen(tt.in, tt.at); got != tt.want {
				t.Errorf("EscapeLen(%q, %d) = %d, want %d", tt.in, tt.at, got, tt.want)
			}
			if got := EscapeLen([]byte(tt.in), tt.at); got != tt.want {
				t.Errorf("EscapeLen([]byte(%q), %d) = %d, want %d", tt.in, tt.at, got, tt.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"no escapes":        {in: "plain text", want: "plain text"},
		"one escape":        {in: `caf\u00e9`, want: "café"},
		"uppercase hex":     {in: `caf\u00E9`, want: "café"},
		"surrogate pair":    {in: `\ud83d\ude00!`, want: "😀!"},
		"repeated u":        {in: `\uuu00e9`, want: "é"},
		"escaped backslash": {in: `\\u00e9`, want: `\\u00e9`},
		"lone surrogate":    {in: `\ud83d`, want: "�"},
		"broken escape":     {in: `\u00g1`, want: `\u00g1`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Unescape(tt.in); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"Grüße aus München",
		"日本語のテキスト",
		"tabs\tand\r\nnewlines",
		"emoji 😀 and 𝄞",
	}
	for _, in := range inputs {
		escaped, err := Escape([]byte(in), UTF8)
		if err != nil {
			t.Fatalf("Escape(%q): %v", in, err)
		}
		for _, b := range escaped {
			if b > 126 {
				t.Fatalf("Escape(%q) produced non-ASCII byte %#x", in, b)
			}
		}
		if got := Unescape(string(escaped)); got != in {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}
