package flowdoc

import (
	"strconv"
	"strings"
)

// Kind is the structural kind of a Node.
type Kind int

const (
	ScalarKind Kind = iota + 1
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return "unknown"
	}
}

// Path addresses a node from the document root. Elements are mapping keys (string)
// or sequence indexes (int).
type Path []any

// Key returns a copy of p extended with a mapping key.
func (p Path) Key(key string) Path {
	return append(p[:len(p):len(p)], key)
}

// Index returns a copy of p extended with a sequence index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], i)
}

// String renders the path as tasks[0].id.
func (p Path) String() string {
	var b strings.Builder
	for _, elem := range p {
		switch v := elem.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

// Node is one parsed unit of a document. A node exclusively owns its entries; nodes
// are never shared between trees or modified after parsing.
type Node struct {
	Kind Kind
	// Value is the semantic value: map[string]any, []any, or a scalar
	// (string, int, float64, bool, nil).
	Value any
	// Text is the unresolved scalar text (e.g. "123" for the int 123).
	Text string
	Tag  string
	Path Path
	// Span covers the node itself, without leading comments.
	Span Span
	// Flow is set for {...} and [...] collections.
	Flow bool
	// Entries holds mapping entries or sequence items in document order.
	Entries []*Entry
}

// Entry is a mapping entry or a sequence item.
type Entry struct {
	// Key is set for mapping entries.
	Key string
	// Index is set for sequence items.
	Index int
	// KeySpan covers the key of a mapping entry or the "-" of a block sequence item.
	KeySpan Span
	// Comment covers the comment lines directly above the entry; empty when none.
	Comment Span
	// Span runs from the leading comment (or key) to the end of the value.
	Span  Span
	Value *Node

	// valueFrom is the first byte after the ":" or "-" indicator.
	valueFrom int
}

// Lookup returns the mapping entry for key, or nil.
func (n *Node) Lookup(key string) *Entry {
	if n == nil || n.Kind != MappingKind {
		return nil
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// Field returns the value node for key, or nil.
func (n *Node) Field(key string) *Node {
	if e := n.Lookup(key); e != nil {
		return e.Value
	}
	return nil
}

// isEmpty reports whether a value counts as not populated: null, empty string or
// empty collection.
func (n *Node) isEmpty() bool {
	return isEmptyValue(n.Value)
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// resolved returns the semantic value of key in a mapping, including keys brought in
// by "<<" merges, which have no entry of their own.
func (n *Node) resolved(key string) (any, bool) {
	m, ok := n.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// isTaskContainer reports whether n is a sequence whose elements are all mappings
// carrying an "id" field.
func (n *Node) isTaskContainer() bool {
	if n == nil || n.Kind != SequenceKind || len(n.Entries) == 0 {
		return false
	}
	for _, item := range n.Entries {
		id := item.Value.Field("id")
		if item.Value.Kind != MappingKind || id == nil || id.Kind != ScalarKind {
			return false
		}
	}
	return true
}
