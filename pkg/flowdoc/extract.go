package flowdoc

import (
	"github.com/mohae/deepcopy"
)

// Condition is a requirement on one field of a top-level map.
type Condition int

const (
	// Present requires the field key to exist, whatever its value.
	Present Condition = iota + 1
	// Populated requires the field to exist with a non-empty value: not null, not an
	// empty string, not an empty collection.
	Populated
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// FieldConditions maps field names to the condition they must satisfy.
type FieldConditions map[string]Condition

// satisfiedBy reports whether the mapping n meets every condition. Keys merged in
// with "<<" count like keys written in the map.
func (fc FieldConditions) satisfiedBy(n *Node) bool {
	for field, cond := range fc {
		v, ok := n.resolved(field)
		switch {
		case !ok:
			return false
		case cond == Populated && isEmptyValue(v):
			return false
		}
	}
	return true
}

// PrunedField is a present-but-empty field removed from a selected map.
type PrunedField struct {
	Field string `json:"field"`
	// Span covers the field entry, from its leading comment to the end of its value.
	Span Span `json:"span"`
	// LineSpan covers the whole lines of the entry, ready to be deleted from the source.
	LineSpan Span `json:"lineSpan"`
}

// MapMatch is a top-level map selected by ExtractMaps.
type MapMatch struct {
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	Span      Span           `json:"span"`
	ValueSpan Span           `json:"valueSpan"`
	Pruned    []PrunedField  `json:"pruned,omitempty"`
}

// ExtractMaps returns, in document order, every top-level entry whose value is a
// mapping satisfying all conditions. Fields constrained only by Present whose value
// is empty are removed from the returned value; those written in the map itself are
// also reported in Pruned, since merged keys have no span of their own.
func ExtractMaps(document string, conditions FieldConditions) ([]MapMatch, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	var matches []MapMatch
	for _, e := range doc.Root.Entries {
		n := e.Value
		if n.Kind != MappingKind || !conditions.satisfiedBy(n) {
			continue
		}
		matches = append(matches, selectMap(document, e, conditions))
	}
	return matches, nil
}

func selectMap(document string, e *Entry, conditions FieldConditions) MapMatch {
	value, _ := deepcopy.Copy(e.Value.Value).(map[string]any)
	if value == nil {
		value = map[string]any{}
	}
	m := MapMatch{Key: e.Key, Value: value, Span: e.Span, ValueSpan: e.Value.Span}
	for field, cond := range conditions {
		if v, ok := value[field]; ok && cond == Present && isEmptyValue(v) {
			delete(value, field)
		}
	}
	for _, field := range e.Value.Entries {
		if conditions[field.Key] != Present || !field.Value.isEmpty() {
			continue
		}
		delete(value, field.Key)
		m.Pruned = append(m.Pruned, PrunedField{
			Field:    field.Key,
			Span:     field.Span,
			LineSpan: wholeLines(document, field.Span),
		})
	}
	return m
}

// MapAtPosition returns the selected map whose entry holds offset, or nil.
func MapAtPosition(document string, offset int, conditions FieldConditions) (*MapMatch, error) {
	matches, err := ExtractMaps(document, conditions)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].Span.covers(offset) {
			return &matches[i], nil
		}
	}
	return nil, nil
}

// FieldValue is the value of one field read from a top-level map.
type FieldValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Span  Span   `json:"span"`
}

// ExtractFieldFromMaps reads field from every top-level map that has it, in document
// order. A field merged in with "<<" is reported with the span of its map.
func ExtractFieldFromMaps(document, field string) ([]FieldValue, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	var values []FieldValue
	for _, e := range doc.Root.Entries {
		if f := e.Value.Lookup(field); f != nil {
			values = append(values, FieldValue{Key: e.Key, Value: f.Value.Value, Span: f.Value.Span})
			continue
		}
		if v, ok := e.Value.resolved(field); ok {
			values = append(values, FieldValue{Key: e.Key, Value: v, Span: e.Value.Span})
		}
	}
	return values, nil
}
