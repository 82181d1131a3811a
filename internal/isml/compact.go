package isml

import (
	"io"
	"strings"
)

// CompactingWriter is the sink for a generated page. Generated code goes
// through Print and is written as-is; template text goes through
// PrintCompact and, once compaction is enabled, is buffered and compacted
// as one run when the next Print or Flush arrives.
//
// The first write error is sticky: later calls return it without writing.
type CompactingWriter struct {
	out      io.Writer
	buf      strings.Builder
	enabled  bool
	encoding string
	err      error
}

// NewCompactingWriter creates a writer over w. encoding is the canonical
// charset the page is written in; handlers read it back through Encoding.
func NewCompactingWriter(w io.Writer, encoding string) *CompactingWriter {
	return &CompactingWriter{out: w, encoding: encoding}
}

// Enable turns on compaction for all following template text. Calling it
// again has no effect.
func (w *CompactingWriter) Enable() {
	w.enabled = true
}

// Encoding returns the page charset.
func (w *CompactingWriter) Encoding() string {
	return w.encoding
}

// Print writes generated code, flushing buffered text first.
func (w *CompactingWriter) Print(s string) error {
	if err := w.flushBuffer(); err != nil {
		return err
	}
	return w.write(s)
}

// PrintCompact writes template text.
func (w *CompactingWriter) PrintCompact(s string) error {
	if w.err != nil {
		return w.err
	}
	if !w.enabled {
		return w.write(s)
	}
	w.buf.WriteString(s)
	return nil
}

// Flush writes any buffered text and flushes the underlying writer if it
// supports flushing.
func (w *CompactingWriter) Flush() error {
	if err := w.flushBuffer(); err != nil {
		return err
	}
	if f, ok := w.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

func (w *CompactingWriter) flushBuffer() error {
	if w.err != nil {
		return w.err
	}
	if w.buf.Len() == 0 {
		return nil
	}
	s := Compact(w.buf.String())
	w.buf.Reset()
	if s == "" {
		return nil
	}
	return w.write(s)
}

func (w *CompactingWriter) write(s string) error {
	if w.err != nil {
		return w.err
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		w.err = err
	}
	return w.err
}

// Compact normalizes the whitespace of one run of template text. The steps
// run in this order over the whole run:
//
//  1. drop every '\r'
//  2. turn every '\t' into ' '
//  3. fold "  " into " "
//  4. fold "\n " into "\n"
//  5. fold "\n\n" into "\n"
//  6. a run that is now exactly "\n" becomes empty
//  7. drop a trailing '\n' after '>', then a leading '\n' before '<'
//
// Each fold is a single left-to-right pass in which the replacement takes
// part in the next comparison, so a whole run of blanks or newlines folds at
// once.
func Compact(s string) string {
	b := []byte(s)
	n := 0
	for _, c := range b {
		switch c {
		case '\r':
			continue
		case '\t':
			c = ' '
		}
		b[n] = c
		n++
	}
	b = b[:n]
	b = foldPairs(b, ' ', ' ', ' ')
	b = foldPairs(b, '\n', ' ', '\n')
	b = foldPairs(b, '\n', '\n', '\n')

	if len(b) == 1 && b[0] == '\n' {
		return ""
	}
	if len(b) > 1 && b[len(b)-1] == '\n' && b[len(b)-2] == '>' {
		b = b[:len(b)-1]
	}
	if len(b) > 1 && b[0] == '\n' && b[1] == '<' {
		b = b[1:]
	}
	return string(b)
}

// foldPairs replaces each c1 c2 pair with c3, in place.
func foldPairs(b []byte, c1, c2, c3 byte) []byte {
	n := 0
	for _, c := range b {
		if n > 0 && b[n-1] == c1 && c == c2 {
			b[n-1] = c3
			continue
		}
		b[n] = c
		n++
	}
	return b[:n]
}
