package charset

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Escape decodes src under the named charset and returns a 7-bit clean copy.
// Printable ASCII, CR, LF and TAB pass through; every other character is
// written as \uXXXX, one escape per UTF-16 code unit. A leading byte order
// mark is dropped.
func Escape(src []byte, charsetName string) ([]byte, error) {
	text, err := Decode(src, charsetName)
	if err != nil {
		return nil, err
	}
	text = strings.TrimPrefix(text, "\ufeff")

	out := make([]byte, 0, len(text))
	for _, r := range text {
		if isPlain(r) {
			out = append(out, byte(r))
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError || r2 != utf8.RuneError {
			out = appendUnit(out, uint16(r1))
			out = appendUnit(out, uint16(r2))
			continue
		}
		out = appendUnit(out, uint16(r))
	}
	return out, nil
}

func isPlain(r rune) bool {
	return (r >= 32 && r <= 126) || r == '\r' || r == '\n' || r == '\t'
}

func appendUnit(b []byte, u uint16) []byte {
	return append(b, '\\', 'u',
		hexDigits[u>>12&0xf], hexDigits[u>>8&0xf], hexDigits[u>>4&0xf], hexDigits[u&0xf])
}

// EscapeLen returns the length of the unicode escape starting at b[i], or 0
// if there is none. An escape is a backslash not itself escaped by an odd run
// of preceding backslashes, one or more 'u', and four hex digits.
func EscapeLen[T ~string | ~[]byte](b T, i int) int {
	if i >= len(b) || b[i] != '\\' {
		return 0
	}
	slashes := 0
	for j := i - 1; j >= 0 && b[j] == '\\'; j-- {
		slashes++
	}
	if slashes%2 != 0 {
		return 0
	}
	j := i + 1
	for j < len(b) && b[j] == 'u' {
		j++
	}
	if j == i+1 || j+4 > len(b) {
		return 0
	}
	for k := j; k < j+4; k++ {
		if hexValue(b[k]) < 0 {
			return 0
		}
	}
	return j + 4 - i
}

// Unescape reverses Escape. Runs of escaped UTF-16 units are recombined so
// surrogate pairs become a single character; unpaired surrogates decode to
// U+FFFD.
func Unescape(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	var units []uint16
	flush := func() {
		if len(units) > 0 {
			sb.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}
	for i := 0; i < len(s); {
		n := EscapeLen(s, i)
		if n == 0 {
			flush()
			sb.WriteByte(s[i])
			i++
			continue
		}
		var u uint16
		for _, c := range []byte(s[i+n-4 : i+n]) {
			u = u<<4 | uint16(hexValue(c))
		}
		units = append(units, u)
		i += n
	}
	flush()
	return sb.String()
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
