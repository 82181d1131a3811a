// Package config holds the charset settings of the template compiler.
//
// Settings come from built-in defaults, then an optional Java properties
// file, then command line flags. The properties keys are the ones the
// application server reads:
//
//	intershop.template.DefaultContentEncoding=UTF-8
//	intershop.template.encoding.text/xml=ISO-8859-1
//	intershop.template.SourceEncoding=UTF-8
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

const (
	keyContentEncoding = "intershop.template.DefaultContentEncoding"
	keySourceEncoding  = "intershop.template.SourceEncoding"
	keyEncodingPrefix  = "intershop.template.encoding."

	// DefaultEncoding is used for every setting that is not configured.
	DefaultEncoding = "UTF-8"
)

// Config implements charset.Configuration.
type Config struct {
	// ContentEncoding is the output charset used when no other rule
	// applies.
	ContentEncoding string
	// SourceEncoding reads templates that declare no charset of their own.
	SourceEncoding string
	// Encodings maps a mime type ("text/html", "text/xml", "text/*", ...)
	// to its output charset.
	Encodings map[string]string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ContentEncoding: DefaultEncoding,
		SourceEncoding:  DefaultEncoding,
		Encodings:       map[string]string{},
	}
}

// DefaultContentEncoding returns the configured default output charset.
func (c *Config) DefaultContentEncoding() string {
	return c.ContentEncoding
}

// OutputEncoding returns the charset configured for mimeType, or "".
func (c *Config) OutputEncoding(mimeType string) string {
	if cs, ok := c.Encodings[mimeType]; ok {
		return cs
	}
	return c.Encodings[strings.ToLower(mimeType)]
}

// PlatformEncoding returns the charset for templates without a declaration.
func (c *Config) PlatformEncoding() string {
	if c.SourceEncoding == "" {
		return DefaultEncoding
	}
	return c.SourceEncoding
}

// SetEncoding configures the output charset of one mime type.
func (c *Config) SetEncoding(mimeType, cs string) {
	if c.Encodings == nil {
		c.Encodings = map[string]string{}
	}
	c.Encodings[strings.ToLower(mimeType)] = cs
}

// MimeTypes returns the configured mime types in sorted order.
func (c *Config) MimeTypes() []string {
	types := make([]string, 0, len(c.Encodings))
	for t := range c.Encodings {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Load reads a properties file on top of the defaults. Properties files are
// ISO-8859-1 encoded.
func Load(path string) (*Config, error) {
	p, err := properties.LoadFile(path, properties.ISO_8859_1)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	c := Default()
	c.Apply(p)
	return c, nil
}

// parse reads properties from a string on top of the defaults.
func parse(s string) (*Config, error) {
	p, err := properties.LoadString(s)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c := Default()
	c.Apply(p)
	return c, nil
}

// Apply copies the template settings found in p into c. Blank values are
// ignored.
func (c *Config) Apply(p *properties.Properties) {
	if v := strings.TrimSpace(p.GetString(keyContentEncoding, "")); v != "" {
		c.ContentEncoding = v
	}
	if v := strings.TrimSpace(p.GetString(keySourceEncoding, "")); v != "" {
		c.SourceEncoding = v
	}
	for _, key := range p.FilterStripPrefix(keyEncodingPrefix).Keys() {
		v := strings.TrimSpace(p.GetString(keyEncodingPrefix+key, ""))
		if key == "" || v == "" {
			continue
		}
		c.SetEncoding(key, v)
	}
}

// ParseEncodingFlag splits a "mime=charset" command line value.
func ParseEncodingFlag(s string) (mimeType, cs string, err error) {
	mimeType, cs, ok := strings.Cut(s, "=")
	mimeType, cs = strings.TrimSpace(mimeType), strings.TrimSpace(cs)
	if !ok || mimeType == "" || cs == "" {
		return "", "", fmt.Errorf("invalid encoding %q: want mime=charset", s)
	}
	return mimeType, cs, nil
}

// EncodingFlags collects repeated -encoding flags. It implements
// flag.Value.
type EncodingFlags map[string]string

func (e EncodingFlags) String() string {
	parts := make([]string, 0, len(e))
	for t, cs := range e {
		parts = append(parts, t+"="+cs)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (e EncodingFlags) Set(s string) error {
	t, cs, err := ParseEncodingFlag(s)
	if err != nil {
		return err
	}
	e[strings.ToLower(t)] = cs
	return nil
}
