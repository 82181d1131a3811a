package isml

import "sync/atomic"

// Counter hands out suffixes for synthetic variable names in generated
// code. Pages compiled with the same Counter never reuse a name, so their
// output can be concatenated. It is safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// NewCounter returns a counter whose first value is 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next returns the next suffix.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// Reset starts the sequence over.
func (c *Counter) Reset() {
	c.n.Store(0)
}
