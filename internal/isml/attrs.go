package isml

// AttributeValue is either a literal string or a precompiled expression.
type AttributeValue struct {
	Text string
	Expr bool
}

// Literal returns a literal attribute value.
func Literal(s string) AttributeValue {
	return AttributeValue{Text: s}
}

// Expression returns an expression attribute value. The text is emitted into
// generated code as-is.
func Expression(s string) AttributeValue {
	return AttributeValue{Text: s, Expr: true}
}

// Attribute is one name/value pair of a tag.
type Attribute struct {
	Name  string
	Value AttributeValue
}

// AttributeSet holds a tag's attributes in source order. Names are lowercase.
// A name may repeat; ISMODULE declares its parameters that way.
type AttributeSet struct {
	list []Attribute
}

// NewAttributeSet builds a set from the given attributes.
func NewAttributeSet(attrs ...Attribute) AttributeSet {
	list := make([]Attribute, len(attrs))
	copy(list, attrs)
	return AttributeSet{list: list}
}

// Get returns the first value for name.
func (s AttributeSet) Get(name string) (AttributeValue, bool) {
	for _, a := range s.list {
		if a.Name == name {
			return a.Value, true
		}
	}
	return AttributeValue{}, false
}

// All returns every value for name in source order.
func (s AttributeSet) All(name string) []AttributeValue {
	var out []AttributeValue
	for _, a := range s.list {
		if a.Name == name {
			out = append(out, a.Value)
		}
	}
	return out
}

// Has reports whether name is present in either form.
func (s AttributeSet) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// List returns a copy of the attributes in source order.
func (s AttributeSet) List() []Attribute {
	out := make([]Attribute, len(s.list))
	copy(out, s.list)
	return out
}
