package extract

import "strings"

// ColumnSet is an ordered set of column names, unique ignoring case.
// Insertion order is output order.
type ColumnSet struct {
	names []string
	index map[string]int
}

// NewColumnSet returns a set seeded with names, skipping case-insensitive
// duplicates.
func NewColumnSet(names ...string) *ColumnSet {
	c := &ColumnSet{index: make(map[string]int)}
	for _, n := range names {
		c.Ensure(n)
	}
	return c
}

// Ensure adds name unless a column equal to it ignoring case exists, and
// returns the column's canonical spelling (the first one seen).
func (c *ColumnSet) Ensure(name string) string {
	key := strings.ToLower(name)
	if i, ok := c.index[key]; ok {
		return c.names[i]
	}
	c.index[key] = len(c.names)
	c.names = append(c.names, name)
	return name
}

// Lookup returns the canonical spelling of name if present.
func (c *ColumnSet) Lookup(name string) (string, bool) {
	i, ok := c.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return c.names[i], true
}

// Len returns the number of columns.
func (c *ColumnSet) Len() int { return len(c.names) }

// Names returns a copy of the columns in order.
func (c *ColumnSet) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
