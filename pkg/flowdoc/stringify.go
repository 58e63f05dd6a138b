package flowdoc

import (
	"bytes"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// flowKeyOrder is the order of well-known flow and task fields in fresh documents.
// Other keys follow alphabetically.
var flowKeyOrder = map[string]int{
	"id":          0,
	"type":        1,
	"namespace":   2,
	"description": 3,
	"labels":      4,
	"inputs":      5,
	"variables":   6,
	"tasks":       7,
	"errors":      8,
	"finally":     9,
	"triggers":    10,
	"outputs":     11,
}

// Stringify renders value as a fresh YAML document with two-space indentation. Strings
// are normalized and multi-line strings use literal block style; nil map fields are
// omitted; lines are never wrapped. Stringify(nil) returns "".
func Stringify(value any) (string, error) {
	prepared := prepareValue(reflect.ValueOf(value))
	if prepared == nil {
		return "", nil
	}
	var node yaml.Node
	if err := node.Encode(prepared); err != nil {
		return "", errors.Wrap(err, "encoding document")
	}
	canonicalize(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", errors.Wrap(err, "encoding document")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "closing encoder")
	}
	return buf.String(), nil
}

// prepareValue copies maps and slices into generic containers, dropping nil map
// values and normalizing strings. Other values are returned as they are.
func prepareValue(v reflect.Value) any {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct {
			return v.Interface()
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		return Normalize(v.String())
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if item := prepareValue(iter.Value()); item != nil {
				out[iter.Key().String()] = item
			}
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = prepareValue(v.Index(i))
		}
		return out
	default:
		return v.Interface()
	}
}

// canonicalize orders mapping keys and switches multi-line strings to literal style,
// recursively.
func canonicalize(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			canonicalize(c)
		}
	case yaml.MappingNode:
		type kv struct{ k, v *yaml.Node }
		pairs := make([]kv, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			pairs = append(pairs, kv{n.Content[i], n.Content[i+1]})
		}
		sort.SliceStable(pairs, func(i, j int) bool { return keyLess(pairs[i].k.Value, pairs[j].k.Value) })
		n.Content = n.Content[:0]
		for _, p := range pairs {
			canonicalize(p.v)
			n.Content = append(n.Content, p.k, p.v)
		}
	case yaml.ScalarNode:
		if n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
	}
}

func keyLess(a, b string) bool {
	ra, oka := flowKeyOrder[a]
	rb, okb := flowKeyOrder[b]
	switch {
	case oka && okb:
		return ra < rb
	case oka != okb:
		return oka
	default:
		return a < b
	}
}
