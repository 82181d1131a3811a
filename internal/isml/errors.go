package isml

import (
	"fmt"
	"strings"
)

// Position represents a source code location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted position string.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind classifies a compilation fault.
type Kind int

const (
	// MalformedAttribute covers missing required attributes, the wrong form
	// (literal vs expression) for a slot, unknown enumerated values and
	// out-of-range literal numbers.
	MalformedAttribute Kind = iota
	// NestingFault covers unmatched closers, unterminated blocks and tags
	// used where an enclosing block forbids them.
	NestingFault
	// EncodingFault reports a charset candidate that could not be used.
	// It never aborts a compilation.
	EncodingFault
	// InternalFault wraps any other failure inside a tag handler.
	InternalFault
	// SyntaxFault is raised by the lexer for unterminated tags and comments.
	SyntaxFault
)

var kindNames = [...]string{
	MalformedAttribute: "malformed attribute",
	NestingFault:       "nesting",
	EncodingFault:      "encoding",
	InternalFault:      "internal",
	SyntaxFault:        "syntax",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error represents a compilation error with source location and optional hint.
type Error struct {
	Kind    Kind
	Pos     Position
	Tag     string // tag name as written in diagnostics, e.g. "ISIF"
	Message string
	Hint    string // optional suggestion for fixing the error
	Err     error  // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Pos.String())
	sb.WriteString(": error: ")
	if e.Tag != "" {
		sb.WriteString(e.Tag)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Hint)
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given kind, position and message.
func NewError(kind Kind, pos Position, message string) *Error {
	return &Error{Kind: kind, Pos: pos, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(kind Kind, pos Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// malformed and friends build position-less errors inside tag handlers; the
// dispatcher stamps the tag position on them.
func malformed(format string, args ...any) *Error {
	return &Error{Kind: MalformedAttribute, Message: fmt.Sprintf(format, args...)}
}

func nestingErr(format string, args ...any) *Error {
	return &Error{Kind: NestingFault, Message: fmt.Sprintf(format, args...)}
}

// ErrorList collects the faults of several templates, one per line.
type ErrorList struct {
	errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.errors = append(el.errors, err)
}

// AddErrorf creates and adds an error with a formatted message.
func (el *ErrorList) AddErrorf(kind Kind, pos Position, format string, args ...any) {
	el.errors = append(el.errors, NewErrorf(kind, pos, format, args...))
}

// Len returns the number of errors.
func (el *ErrorList) Len() int {
	return len(el.errors)
}

// Error implements the error interface, returning all errors joined by newlines.
func (el *ErrorList) Error() string {
	if len(el.errors) == 0 {
		return ""
	}
	if len(el.errors) == 1 {
		return el.errors[0].Error()
	}

	var sb strings.Builder
	for i, err := range el.errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Err returns nil if there are no errors, otherwise returns the ErrorList as an error.
func (el *ErrorList) Err() error {
	if len(el.errors) == 0 {
		return nil
	}
	return el
}
