package isml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// tagCtx carries one tag through its handler. Handlers resolve attributes
// through the slot helpers below and append generated code to b; the
// dispatcher wraps the result in scriptlet delimiters.
type tagCtx struct {
	c       *Compiler
	tag     *Tag
	drained []Frame // frames popped by the nesting check, innermost first
	b       strings.Builder
}

func (t *tagCtx) print(parts ...string) {
	for _, p := range parts {
		t.b.WriteString(p)
	}
}

func (t *tagCtx) printf(format string, args ...any) {
	fmt.Fprintf(&t.b, format, args...)
}

// line is the tag's source line, copied into runtime log messages.
func (t *tagCtx) line() int {
	return t.tag.Pos.Line
}

func (t *tagCtx) name() string {
	return t.tag.Kind.String()
}

func (t *tagCtx) missing(attr string) *Error {
	return malformed("Missing %q attribute in %s.", attr, t.name())
}

// literal returns a literal-only attribute. An expression is a fault.
func (t *tagCtx) literal(attr string) (string, bool, error) {
	v, ok := t.tag.Attrs.Get(attr)
	if !ok {
		return "", false, nil
	}
	if v.Expr {
		return "", false, malformed("Attribute %q in %s must not have an expression value.", attr, t.name())
	}
	return v.Text, true, nil
}

func (t *tagCtx) requireLiteral(attr string) (string, error) {
	s, ok, err := t.literal(attr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", t.missing(attr)
	}
	return s, nil
}

// expr returns an expression-only attribute. A literal is a fault.
func (t *tagCtx) expr(attr string) (string, bool, error) {
	v, ok := t.tag.Attrs.Get(attr)
	if !ok {
		return "", false, nil
	}
	if !v.Expr {
		return "", false, malformed("Attribute %q in %s must have an expression value.", attr, t.name())
	}
	return v.Text, true, nil
}

func (t *tagCtx) requireExpr(attr string) (string, error) {
	s, ok, err := t.expr(attr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", t.missing(attr)
	}
	return s, nil
}

// value resolves an attribute that accepts either form into a Java String
// expression: literals are quoted, expressions are formatted at runtime.
func (t *tagCtx) value(attr string) (string, bool) {
	v, ok := t.tag.Attrs.Get(attr)
	if !ok {
		return "", false
	}
	return stringCode(v), true
}

func (t *tagCtx) requireValue(attr string) (string, error) {
	s, ok := t.value(attr)
	if !ok {
		return "", t.missing(attr)
	}
	return s, nil
}

// raw resolves an attribute that accepts either form into a Java Object
// expression: literals are quoted, expressions are used as they are.
func (t *tagCtx) raw(attr string) (string, bool) {
	v, ok := t.tag.Attrs.Get(attr)
	if !ok {
		return "", false
	}
	return objectCode(v), true
}

// enum returns the lowercased value of a literal-only attribute restricted
// to allowed. Matching ignores case.
func (t *tagCtx) enum(attr string, allowed ...string) (string, bool, error) {
	s, ok, err := t.literal(attr)
	if err != nil || !ok {
		return "", ok, err
	}
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return strings.ToLower(a), true, nil
		}
	}
	e := malformed("Attribute %q in %s has a wrong value.", attr, t.name())
	e.Hint = "expected one of " + strings.Join(allowed, ", ")
	return "", false, e
}

// flag resolves a literal-only true/false attribute.
func (t *tagCtx) flag(attr string) (value, ok bool, err error) {
	s, ok, err := t.enum(attr, "true", "false")
	return s == "true", ok, err
}

// numberSlot declares a numeric attribute. Literals are parsed and checked
// against [min, max] at compile time; expressions are converted at runtime
// and checked by whatever guard the handler emits.
type numberSlot struct {
	name     string
	min, max int64
	long     bool // convert expressions with longValue instead of intValue
	fraction bool // literals may carry a fractional part, which is dropped
}

// number is a resolved numeric attribute.
type number struct {
	code    string // Java expression of the value
	literal bool
	value   int64 // set when literal
}

func (t *tagCtx) number(s numberSlot) (number, bool, error) {
	v, ok := t.tag.Attrs.Get(s.name)
	if !ok {
		return number{}, false, nil
	}
	if v.Expr {
		conv := "intValue"
		if s.long {
			conv = "longValue"
		}
		return number{code: "((Number)(" + v.Text + "))." + conv + "()"}, true, nil
	}

	n, err := parseNumber(strings.TrimSpace(v.Text), s.fraction)
	if err != nil || n < s.min || n > s.max {
		return number{}, false, malformed(
			"Only numeric values [%d , %d] or ISML expressions are allowed for the %q attribute of tag %s.",
			s.min, s.max, s.name, t.name())
	}
	return number{code: strconv.FormatInt(n, 10), literal: true, value: n}, true, nil
}

func parseNumber(s string, fraction bool) (int64, error) {
	if !fraction {
		return strconv.ParseInt(s, 10, 64)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}

// exclusive returns the one attribute of group that is present. None or
// more than one is a fault.
func (t *tagCtx) exclusive(group ...string) (string, error) {
	found := ""
	for _, name := range group {
		if !t.tag.Attrs.Has(name) {
			continue
		}
		if found != "" {
			return "", malformed("Attributes %q and %q in %s exclude each other.", found, name, t.name())
		}
		found = name
	}
	if found == "" {
		e := malformed("Missing attribute in %s.", t.name())
		e.Hint = "one of " + strings.Join(group, ", ") + " is required"
		return "", e
	}
	return found, nil
}

// rangeGuard emits code that stores an int expression in a local variable
// and aborts the page if it falls outside [lo, hi].
func rangeGuard(variable, code, what string, lo, hi int64) string {
	return typedRangeGuard("int", variable, code, what, lo, hi)
}

// typedRangeGuard is rangeGuard for a local of Java type javaType.
func typedRangeGuard(javaType, variable, code, what string, lo, hi int64) string {
	return fmt.Sprintf("%s %s = %s;"+
		"if (%s < %d || %s > %d) {"+
		"throw new ServletException(\"Unsupported %s \" + %s + \" in template \"+getTemplateExecutionConfig().getTemplateName()+\". Supported interval [%d, %d]\");"+
		"}",
		javaType, variable, code, variable, lo, variable, hi, what, variable, lo, hi)
}

// stringCode renders an attribute as a Java String expression.
func stringCode(v AttributeValue) string {
	if v.Expr {
		return "context.getFormattedValue(" + v.Text + ",null)"
	}
	return javaString(v.Text)
}

// objectCode renders an attribute as a Java Object expression.
func objectCode(v AttributeValue) string {
	if v.Expr {
		return v.Text
	}
	return javaString(v.Text)
}

// javaString quotes s as a Java string literal. Characters outside
// printable ASCII are written as unicode escapes so the literal survives any
// page charset.
func javaString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r >= 32 && r <= 126:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r -= 0x10000
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", 0xD800+(r>>10), 0xDC00+(r&0x3FF))
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
