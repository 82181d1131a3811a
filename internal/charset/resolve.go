package charset

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/grindlemire/go-isml/internal/log"
)

const (
	// ScanWindow is how many leading bytes are searched for declarations.
	ScanWindow = 1024

	TypeHTML = "text/html"
	TypeXML  = "text/xml"

	// DefaultContentCharset is used when the configuration names none or an
	// unusable one.
	DefaultContentCharset = "UTF-8"
)

// Configuration supplies the charset settings the resolver consults.
type Configuration interface {
	// DefaultContentEncoding returns the default output charset, or "".
	DefaultContentEncoding() string
	// OutputEncoding returns the charset configured for a mime type, or "".
	OutputEncoding(mimeType string) string
}

// The patterns are matched against the scan window as-is. "[:blank:]" is a
// plain character class here, not the POSIX class.
var (
	contentCharsetPattern = regexp.MustCompile(`(?i)(iscontent)[^>]+(charset)[:blank:]*=[:blank:]*("|')([^"']+?)("|')`)
	contentTypePattern    = regexp.MustCompile(`(?i)(iscontent)[^>]+(type)[:blank:]*=[:blank:]*("|')([^"']+?)("|')`)
	xmlEncodingPattern    = regexp.MustCompile(`(?i)(<[?]xml)[^>]+(encoding)[:blank:]*=[:blank:]*("|')([^"']+?)("|')`)
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
)

// Fault records a charset candidate that was discarded.
type Fault struct {
	Candidate string // charset name as found
	Origin    string // where the candidate came from, e.g. "iscontent charset"
	Err       error
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s %q is not a usable charset: %v", f.Origin, f.Candidate, f.Err)
}

// Decision is the outcome of resolving one template's charsets.
type Decision struct {
	SourceCharset   string // canonical charset the template is decoded with
	OutputCharset   string // canonical charset the generated page is written in
	MimeType        string // detected mime type, "" if none was declared
	ContentDeclared bool   // the scan window mentions ISCONTENT

	ContentCharset string // valid charset from the ISCONTENT tag, or ""
	XMLCharset     string // valid charset from the XML declaration, or ""

	Faults []Fault
}

// Resolver determines source and output charsets from a template's leading
// bytes.
type Resolver struct {
	Config Configuration
	// PlatformCharset is used to read templates that neither start with a
	// byte order mark nor declare a charset. Empty means UTF-8.
	PlatformCharset string
}

// NewResolver creates a Resolver. cfg may be nil.
func NewResolver(cfg Configuration, platformCharset string) *Resolver {
	return &Resolver{Config: cfg, PlatformCharset: platformCharset}
}

// Resolve inspects src and decides its charsets. It never fails; unusable
// candidates are recorded in Decision.Faults and skipped.
func (r *Resolver) Resolve(src []byte) *Decision {
	d := &Decision{}
	window := src
	if len(window) > ScanWindow {
		window = window[:ScanWindow]
	}

	switch {
	case bytes.HasPrefix(window, bomUTF16LE):
		d.SourceCharset = UTF16LE
	case bytes.HasPrefix(window, bomUTF16BE):
		d.SourceCharset = UTF16BE
	case bytes.HasPrefix(window, bomUTF8):
		d.SourceCharset = UTF8
	}

	// Provisional single-byte decode: every byte maps to one character, so
	// the ASCII declarations are found whatever the real charset is.
	scan, _ := Decode(window, Latin1)
	if m := contentCharsetPattern.FindStringSubmatch(scan); m != nil {
		d.ContentCharset = r.candidate(d, m[4], "iscontent charset")
		if d.SourceCharset == "" {
			d.SourceCharset = d.ContentCharset
		}
	}
	d.ContentDeclared = strings.Contains(strings.ToUpper(scan), "ISCONTENT")

	if d.SourceCharset == "" {
		d.SourceCharset = r.platformCharset(d)
		log.Encoding("no template charset found, assuming platform charset %s", d.SourceCharset)
	} else {
		log.Encoding("reading template as %s", d.SourceCharset)
	}

	if text, err := Decode(window, d.SourceCharset); err != nil {
		d.MimeType = TypeHTML
	} else {
		if m := contentTypePattern.FindStringSubmatch(text); m != nil {
			d.MimeType = m[4]
		}
		if m := xmlEncodingPattern.FindStringSubmatch(text); m != nil {
			d.XMLCharset = r.candidate(d, m[4], "xml encoding")
			if d.XMLCharset != "" && d.MimeType == "" {
				d.MimeType = TypeXML
			}
		}
	}

	d.OutputCharset = r.outputCharset(d)
	log.Encoding("writing page as %s (type %q)", d.OutputCharset, d.MimeType)
	return d
}

// candidate maps a declared charset name and probes it. It returns "" and
// records a fault if the charset is unusable.
func (r *Resolver) candidate(d *Decision, name, origin string) string {
	cs := MapHTTPToCharset(name)
	if err := Probe(cs); err != nil {
		d.fault(name, origin, err)
		return ""
	}
	return cs
}

func (r *Resolver) platformCharset(d *Decision) string {
	name := r.PlatformCharset
	if name == "" {
		name = DefaultContentCharset
	}
	cs := MapHTTPToCharset(name)
	if err := Probe(cs); err != nil {
		d.fault(name, "platform charset", err)
		return UTF8
	}
	return cs
}

// outputCharset runs the cascade for the detected mime type.
func (r *Resolver) outputCharset(d *Decision) string {
	mime := d.MimeType
	if mime == "" {
		mime = TypeHTML
	}

	switch {
	case strings.EqualFold(mime, TypeHTML):
		if cs := r.custom(d, TypeHTML); cs != "" {
			return cs
		}
	case strings.HasPrefix(mime, TypeXML):
		if d.XMLCharset != "" {
			return d.XMLCharset
		}
		if d.ContentCharset != "" {
			return d.ContentCharset
		}
		if cs := r.custom(d, TypeXML); cs != "" {
			return cs
		}
	case strings.HasPrefix(mime, "text/"):
		if d.ContentCharset != "" {
			return d.ContentCharset
		}
		if cs := r.custom(d, "text/*"); cs != "" {
			return cs
		}
	default:
		if cs := r.custom(d, mime); cs != "" {
			return cs
		}
	}
	return r.defaultCharset(d)
}

// custom returns the configured charset for a mime type, if usable.
func (r *Resolver) custom(d *Decision, mime string) string {
	if r.Config == nil {
		return ""
	}
	name := r.Config.OutputEncoding(mime)
	if name == "" {
		return ""
	}
	return r.candidate(d, name, "encoding for "+mime)
}

func (r *Resolver) defaultCharset(d *Decision) string {
	name := ""
	if r.Config != nil {
		name = r.Config.DefaultContentEncoding()
	}
	if name == "" {
		name = DefaultContentCharset
	}
	cs := MapHTTPToCharset(name)
	if err := Probe(cs); err != nil {
		d.fault(name, "default content encoding", err)
		return MapHTTPToCharset(DefaultContentCharset)
	}
	return cs
}

func (d *Decision) fault(candidate, origin string, err error) {
	f := Fault{Candidate: candidate, Origin: origin, Err: err}
	d.Faults = append(d.Faults, f)
	log.Encoding("%s", f.Error())
}
