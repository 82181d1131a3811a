// Package charset resolves template charsets and converts template source to
// and from the 7-bit escaped form the lexer consumes.
//
// Charset names come in two spellings: the names written in templates and
// HTTP headers ("utf-8", "windows-1252") and the compiler's canonical names
// ("UTF8", "Cp1252"). MapHTTPToCharset and MapCharsetToHTTP convert between
// them; Lookup accepts either.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// UTF8 is the canonical name of UTF-8.
	UTF8 = "UTF8"
	// UTF16BE and UTF16LE are the canonical names of the BOM-detected charsets.
	UTF16BE = "UTF-16BE"
	UTF16LE = "UTF-16LE"
	// Latin1 is the canonical name of ISO-8859-1.
	Latin1 = "ISO8859_1"

	// DefaultHTTPCharset is what MapCharsetToHTTP returns for unknown names.
	DefaultHTTPCharset = "iso-8859-1"
)

// ErrUnsupported is returned by Lookup for names no decoder is available for.
var ErrUnsupported = errors.New("unsupported charset")

// httpToCharset maps lowercased template/HTTP names to canonical names.
var httpToCharset = map[string]string{
	"us-ascii":        "US-ASCII",
	"big5":            "Big5",
	"cp037":           "Cp037",
	"cp1006":          "Cp1006",
	"cp1025":          "Cp1025",
	"cp1026":          "Cp1026",
	"cp1097":          "Cp1097",
	"cp1098":          "Cp1098",
	"cp1112":          "Cp1112",
	"cp1122":          "Cp1122",
	"cp1123":          "Cp1123",
	"cp1124":          "Cp1124",
	"windows-1250":    "Cp1250",
	"windows-1251":    "Cp1251",
	"windows-1252":    "Cp1252",
	"windows-1253":    "Cp1253",
	"windows-1254":    "Cp1254",
	"windows-1255":    "Cp1255",
	"windows-1256":    "Cp1256",
	"windows-1257":    "Cp1257",
	"windows-1258":    "Cp1258",
	"cp1381":          "Cp1381",
	"cp1383":          "Cp1383",
	"cp273":           "Cp273",
	"cp277":           "Cp277",
	"cp278":           "Cp278",
	"cp280":           "Cp280",
	"cp284":           "Cp284",
	"cp285":           "Cp285",
	"cp297":           "Cp297",
	"cp33722":         "Cp33722",
	"cp420":           "Cp420",
	"cp424":           "Cp424",
	"cp437":           "Cp437",
	"cp500":           "Cp500",
	"cp737":           "Cp737",
	"cp775":           "Cp775",
	"cp838":           "Cp838",
	"cp850":           "Cp850",
	"cp852":           "Cp852",
	"cp855":           "Cp855",
	"cp856":           "Cp856",
	"cp857":           "Cp857",
	"cp860":           "Cp860",
	"cp861":           "Cp861",
	"cp862":           "Cp862",
	"cp863":           "Cp863",
	"cp864":           "Cp864",
	"cp865":           "Cp865",
	"cp866":           "Cp866",
	"cp868":           "Cp868",
	"cp869":           "Cp869",
	"cp870":           "Cp870",
	"cp871":           "Cp871",
	"cp874":           "Cp874",
	"cp875":           "Cp875",
	"cp918":           "Cp918",
	"cp921":           "Cp921",
	"cp922":           "Cp922",
	"cp930":           "Cp930",
	"cp933":           "Cp933",
	"cp935":           "Cp935",
	"cp937":           "Cp937",
	"cp939":           "Cp939",
	"cp942":           "Cp942",
	"cp942c":          "Cp942c",
	"cp943":           "Cp943",
	"cp943c":          "Cp943c",
	"cp948":           "Cp948",
	"cp949":           "Cp949",
	"cp949c":          "Cp949c",
	"cp950":           "Cp950",
	"cp964":           "Cp964",
	"cp970":           "Cp970",
	"gb2312":          "EUC_CN",
	"euc-jp":          "EUC_JP",
	"euc-kr":          "EUC_KR",
	"euc-tw":          "EUC_TW",
	"iso-2022-jp":     "ISO2022JP",
	"iso-8859-1":      "ISO8859_1",
	"iso_8859-15":     "ISO-8859-15",
	"latin-9":         "ISO-8859-15",
	"iso-8859-2":      "ISO8859_2",
	"iso-8859-3":      "ISO8859_3",
	"iso-8859-4":      "ISO8859_4",
	"iso-8859-5":      "ISO8859_5",
	"iso-8859-6":      "ISO8859_6",
	"iso-8859-7":      "ISO8859_7",
	"iso-8859-8":      "ISO8859_8",
	"iso-8859-9":      "ISO8859_9",
	"jis auto detect": "JISAutoDetect",
	"ksc5601-1992":    "Johab",
	"koi8-r":          "KOI8_R",
	"windows-874":     "MS874",
	"x-sjis":          "Shift_JIS",
	"shift-jis":       "Shift_JIS",
	"shift_jis":       "Shift_JIS",
	"windows-949":     "MS949",
	"utf-8":           "UTF8",
	"utf-16":          "UTF-16",
	"utf-16be":        "UTF-16BE",
	"utf-16le":        "UTF-16LE",
}

// charsetToHTTP maps lowercased canonical names to template/HTTP names.
var charsetToHTTP = map[string]string{
	"us-ascii":      "us-ascii",
	"big5":          "big5",
	"cp1250":        "windows-1250",
	"cp1251":        "windows-1251",
	"cp1252":        "windows-1252",
	"cp1253":        "windows-1253",
	"cp1254":        "windows-1254",
	"cp1255":        "windows-1255",
	"cp1256":        "windows-1256",
	"cp1257":        "windows-1257",
	"cp1258":        "windows-1258",
	"euc_cn":        "gb2312",
	"euc_jp":        "euc-jp",
	"euc_kr":        "euc-kr",
	"euc_tw":        "euc-tw",
	"iso2022jp":     "iso-2022-jp",
	"iso8859_1":     "iso-8859-1",
	"iso-8859-15":   "iso_8859-15",
	"iso8859_2":     "iso-8859-2",
	"iso8859_3":     "iso-8859-3",
	"iso8859_4":     "iso-8859-4",
	"iso8859_5":     "iso-8859-5",
	"iso8859_6":     "iso-8859-6",
	"iso8859_7":     "iso-8859-7",
	"iso8859_8":     "iso-8859-8",
	"iso8859_9":     "iso-8859-9",
	"jisautodetect": "jis auto detect",
	"johab":         "ksc5601-1992",
	"koi8_r":        "koi8-r",
	"ms874":         "windows-874",
	"shift_jis":     "Shift_JIS",
	"ms949":         "windows-949",
	"sjis":          "Shift_JIS",
	"utf8":          "utf-8",
	"utf-16":        "UTF-16",
	"utf-16be":      "UTF-16BE",
	"utf-16le":      "UTF-16LE",
}

// Code pages that only exist as Cp<n> and pass through unchanged.
func init() {
	for _, cp := range []string{
		"037", "1006", "1025", "1026", "1097", "1098", "1112", "1122", "1123", "1124",
		"1381", "1383", "273", "277", "278", "280", "284", "285", "297", "33722",
		"420", "424", "437", "500", "737", "775", "838", "850", "852", "855",
		"856", "857", "860", "861", "862", "863", "864", "865", "866", "868",
		"869", "870", "871", "874", "875", "918", "921", "922", "930", "933",
		"935", "937", "939", "942", "942c", "943", "943c", "948", "949", "949c",
		"950", "964", "970",
	} {
		charsetToHTTP["cp"+cp] = "cp" + cp
	}
}

// decoders maps lowercased canonical names to their encodings. Names that
// appear in the alias tables but not here are resolved through the IANA and
// WHATWG indexes, and fail Lookup if neither knows them.
var decoders = map[string]encoding.Encoding{
	"us-ascii":    charmap.ISO8859_1,
	"utf8":        unicode.UTF8,
	"utf-8":       unicode.UTF8,
	"utf-16":      unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"utf-16be":    unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-16le":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"iso8859_1":   charmap.ISO8859_1,
	"iso8859_2":   charmap.ISO8859_2,
	"iso8859_3":   charmap.ISO8859_3,
	"iso8859_4":   charmap.ISO8859_4,
	"iso8859_5":   charmap.ISO8859_5,
	"iso8859_6":   charmap.ISO8859_6,
	"iso8859_7":   charmap.ISO8859_7,
	"iso8859_8":   charmap.ISO8859_8,
	"iso8859_9":   charmap.ISO8859_9,
	"iso-8859-15": charmap.ISO8859_15,
	"cp037":       charmap.CodePage037,
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"cp852":       charmap.CodePage852,
	"cp855":       charmap.CodePage855,
	"cp860":       charmap.CodePage860,
	"cp862":       charmap.CodePage862,
	"cp863":       charmap.CodePage863,
	"cp865":       charmap.CodePage865,
	"cp866":       charmap.CodePage866,
	"cp874":       charmap.Windows874,
	"ms874":       charmap.Windows874,
	"cp1250":      charmap.Windows1250,
	"cp1251":      charmap.Windows1251,
	"cp1252":      charmap.Windows1252,
	"cp1253":      charmap.Windows1253,
	"cp1254":      charmap.Windows1254,
	"cp1255":      charmap.Windows1255,
	"cp1256":      charmap.Windows1256,
	"cp1257":      charmap.Windows1257,
	"cp1258":      charmap.Windows1258,
	"koi8_r":      charmap.KOI8R,
	"big5":        traditionalchinese.Big5,
	"cp950":       traditionalchinese.Big5,
	"euc_cn":      simplifiedchinese.GBK,
	"euc_jp":      japanese.EUCJP,
	"iso2022jp":   japanese.ISO2022JP,
	"shift_jis":   japanese.ShiftJIS,
	"sjis":        japanese.ShiftJIS,
	"euc_kr":      korean.EUCKR,
	"ms949":       korean.EUCKR,
	"cp949":       korean.EUCKR,
}

// MapHTTPToCharset maps a template or HTTP charset name to its canonical
// name. Names missing from the alias table are looked up in the IANA index;
// anything else is returned unchanged so that Probe reports it.
func MapHTTPToCharset(name string) string {
	if name == "" {
		return ""
	}
	if cs, ok := httpToCharset[strings.ToLower(name)]; ok {
		return cs
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		if canonical, err := ianaindex.IANA.Name(enc); err == nil {
			return canonical
		}
	}
	return name
}

// MapCharsetToHTTP maps a canonical charset name to the name written into
// content-type declarations. Unknown names map to DefaultHTTPCharset unless
// the IANA index knows them.
func MapCharsetToHTTP(name string) string {
	if cs, ok := charsetToHTTP[strings.ToLower(name)]; ok {
		return cs
	}
	if name != "" {
		if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
			return strings.ToLower(name)
		}
	}
	return DefaultHTTPCharset
}

// Lookup returns the encoding for a canonical or HTTP charset name.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, fmt.Errorf("empty charset name: %w", ErrUnsupported)
	}
	key := strings.ToLower(name)
	if enc, ok := decoders[key]; ok {
		return enc, nil
	}
	if cs, ok := httpToCharset[key]; ok {
		if enc, ok := decoders[strings.ToLower(cs)]; ok {
			return enc, nil
		}
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
}

// probeByte is decoded under every candidate charset before it is used.
var probeByte = []byte{80}

// Probe reports whether name is a usable charset by decoding one known byte.
func Probe(name string) error {
	enc, err := Lookup(name)
	if err != nil {
		return err
	}
	_, _, err = transform.Bytes(enc.NewDecoder(), probeByte)
	if err != nil && !errors.Is(err, transform.ErrShortSrc) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Decode decodes b under the named charset.
func Decode(b []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("decoding as %s: %w", name, err)
	}
	return string(out), nil
}
