package charset

import (
	"errors"
	"testing"
)

func TestMapHTTPToCharset(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"utf-8":          {in: "UTF-8", want: "UTF8"},
		"lowercase":      {in: "utf-8", want: "UTF8"},
		"windows":        {in: "windows-1252", want: "Cp1252"},
		"latin1":         {in: "ISO-8859-1", want: "ISO8859_1"},
		"latin9 alias":   {in: "latin-9", want: "ISO-8859-15"},
		"sjis":           {in: "x-sjis", want: "Shift_JIS"},
		"gb2312":         {in: "GB2312", want: "EUC_CN"},
		"empty":          {in: "", want: ""},
		"unknown passes": {in: "x-made-up", want: "x-made-up"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := MapHTTPToCharset(tt.in); got != tt.want {
				t.Errorf("MapHTTPToCharset(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapCharsetToHTTP(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"utf8":      {in: "UTF8", want: "utf-8"},
		"cp1252":    {in: "Cp1252", want: "windows-1252"},
		"latin1":    {in: "ISO8859_1", want: "iso-8859-1"},
		"shift_jis": {in: "Shift_JIS", want: "Shift_JIS"},
		"codepage":  {in: "Cp437", want: "cp437"},
		"utf-16le":  {in: "UTF-16LE", want: "UTF-16LE"},
		"unknown":   {in: "x-made-up", want: DefaultHTTPCharset},
		"empty":     {in: "", want: DefaultHTTPCharset},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := MapCharsetToHTTP(tt.in); got != tt.want {
				t.Errorf("MapCharsetToHTTP(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	tests := map[string]struct {
		name    string
		wantErr bool
	}{
		"utf8":          {name: "UTF8"},
		"http spelling": {name: "utf-8"},
		"cp1252":        {name: "Cp1252"},
		"shift_jis":     {name: "Shift_JIS"},
		"euc_kr":        {name: "EUC_KR"},
		"big5":          {name: "Big5"},
		"utf-16":        {name: "UTF-16"},
		"utf-16le":      {name: "UTF-16LE"},
		"us-ascii":      {name: "US-ASCII"},
		"ebcdic":        {name: "Cp037"},
		"unknown":       {name: "x-made-up", wantErr: true},
		"empty":         {name: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := Probe(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupported) {
					t.Errorf("Probe(%q) = %v, want ErrUnsupported", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Probe(%q) unexpected error: %v", tt.name, err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte{'c', 0xE9}, Latin1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "cé" {
		t.Errorf("Decode = %q, want %q", got, "cé")
	}

	got, err = Decode([]byte{0x82, 0xA0}, "Shift_JIS")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "あ" {
		t.Errorf("Decode = %q, want %q", got, "あ")
	}
}
