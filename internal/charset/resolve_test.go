package charset

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type testConfig struct {
	def   string
	types map[string]string
}

func (c testConfig) DefaultContentEncoding() string { return c.def }

func (c testConfig) OutputEncoding(mime string) string { return c.types[mime] }

func TestResolve(t *testing.T) {
	type tc struct {
		src      string
		config   Configuration
		platform string
		want     Decision
		faults   int
	}

	tests := map[string]tc{
		"empty template": {
			src:  "",
			want: Decision{SourceCharset: UTF8, OutputCharset: UTF8},
		},
		"html with content charset": {
			src: `<iscontent type="text/html" charset="windows-1252">`,
			want: Decision{
				SourceCharset:   "Cp1252",
				OutputCharset:   UTF8,
				MimeType:        TypeHTML,
				ContentDeclared: true,
				ContentCharset:  "Cp1252",
			},
		},
		"xml declaration wins for xml": {
			src: `<?xml version="1.0" encoding="ISO-8859-1"?>` + "\n" +
				`<iscontent type="text/xml" charset="UTF-8">`,
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   "ISO8859_1",
				MimeType:        TypeXML,
				ContentDeclared: true,
				ContentCharset:  UTF8,
				XMLCharset:      "ISO8859_1",
			},
		},
		"xml declaration implies xml": {
			src: `<?xml version="1.0" encoding="windows-1252"?><feed/>`,
			want: Decision{
				SourceCharset: UTF8,
				OutputCharset: "Cp1252",
				MimeType:      TypeXML,
				XMLCharset:    "Cp1252",
			},
		},
		"declared type kept over xml declaration": {
			src: `<iscontent type="text/html"><?xml version="1.0" encoding="windows-1252"?>`,
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   UTF8,
				MimeType:        TypeHTML,
				ContentDeclared: true,
				XMLCharset:      "Cp1252",
			},
		},
		"bom beats content charset": {
			src: "\xEF\xBB\xBF" + `<iscontent charset="iso-8859-1">`,
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   UTF8,
				ContentDeclared: true,
				ContentCharset:  "ISO8859_1",
			},
		},
		"utf-16le bom": {
			src:  "\xFF\xFEa\x00",
			want: Decision{SourceCharset: UTF16LE, OutputCharset: UTF8},
		},
		"utf-16be bom": {
			src:  "\xFE\xFF\x00a",
			want: Decision{SourceCharset: UTF16BE, OutputCharset: UTF8},
		},
		"invalid content charset": {
			src: `<iscontent charset="x-made-up">`,
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   UTF8,
				ContentDeclared: true,
			},
			faults: 1,
		},
		"platform charset": {
			src:      "plain",
			platform: "windows-1252",
			want:     Decision{SourceCharset: "Cp1252", OutputCharset: UTF8},
		},
		"html override": {
			src:    `<iscontent type="text/html" charset="utf-8">`,
			config: testConfig{types: map[string]string{TypeHTML: "ISO-8859-1"}},
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   "ISO8859_1",
				MimeType:        TypeHTML,
				ContentDeclared: true,
				ContentCharset:  UTF8,
			},
		},
		"text type uses content charset": {
			src:    `<iscontent type="text/plain" charset="shift_jis">`,
			config: testConfig{types: map[string]string{"text/*": "windows-1252"}},
			want: Decision{
				SourceCharset:   "Shift_JIS",
				OutputCharset:   "Shift_JIS",
				MimeType:        "text/plain",
				ContentDeclared: true,
				ContentCharset:  "Shift_JIS",
			},
		},
		"text type override": {
			src:    `<iscontent type="text/plain">`,
			config: testConfig{types: map[string]string{"text/*": "windows-1252"}},
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   "Cp1252",
				MimeType:        "text/plain",
				ContentDeclared: true,
			},
		},
		"other type exact override": {
			src:    `<iscontent type="application/json" charset="windows-1252">`,
			config: testConfig{types: map[string]string{"application/json": "UTF-16"}},
			want: Decision{
				SourceCharset:   "Cp1252",
				OutputCharset:   "UTF-16",
				MimeType:        "application/json",
				ContentDeclared: true,
				ContentCharset:  "Cp1252",
			},
		},
		"other type falls back to default": {
			src:    `<iscontent type="application/json">`,
			config: testConfig{def: "windows-1252"},
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   "Cp1252",
				MimeType:        "application/json",
				ContentDeclared: true,
			},
		},
		"unusable override skipped": {
			src:    `<iscontent type="text/html">`,
			config: testConfig{types: map[string]string{TypeHTML: "x-made-up"}},
			want: Decision{
				SourceCharset:   UTF8,
				OutputCharset:   UTF8,
				MimeType:        TypeHTML,
				ContentDeclared: true,
			},
			faults: 1,
		},
		"unusable default": {
			src:    "plain",
			config: testConfig{def: "x-made-up"},
			want:   Decision{SourceCharset: UTF8, OutputCharset: UTF8},
			faults: 1,
		},
		"mention without attributes": {
			src:  "<!--- no ISCONTENT here --->",
			want: Decision{SourceCharset: UTF8, OutputCharset: UTF8, ContentDeclared: true},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := NewResolver(tt.config, tt.platform).Resolve([]byte(tt.src))
			if len(got.Faults) != tt.faults {
				t.Errorf("got %d faults, want %d: %v", len(got.Faults), tt.faults, got.Faults)
			}
			if diff := cmp.Diff(tt.want, *got, cmpopts.IgnoreFields(Decision{}, "Faults")); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_ScanWindow(t *testing.T) {
	src := strings.Repeat(" ", ScanWindow) + `<iscontent charset="windows-1252">`
	got := NewResolver(nil, "").Resolve([]byte(src))
	if got.ContentDeclared || got.ContentCharset != "" {
		t.Errorf("declaration past the scan window was seen: %+v", got)
	}
}

func TestFault_Error(t *testing.T) {
	f := Fault{Candidate: "x-made-up", Origin: "iscontent charset", Err: ErrUnsupported}
	want := `iscontent charset "x-made-up" is not a usable charset: unsupported charset`
	if got := f.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
