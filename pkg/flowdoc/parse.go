package flowdoc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const mergeTag = "!!merge"

// Document is a source text paired with its span-annotated tree. It is built for one
// call and not meant to outlive it.
type Document struct {
	Source string
	Root   *Node

	lines *lineIndex
}

// Parse returns the semantic value of a flow document. An empty document yields an
// empty map.
func Parse(text string) (map[string]any, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return doc.Root.Value.(map[string]any), nil
}

// ParseDocument parses text into a tree whose nodes carry exact source spans.
// Malformed input, duplicate keys and multi-document streams fail with *SyntaxError;
// a root that is not a mapping fails with ErrNotMapping.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{Source: text, lines: newLineIndex(text)}
	dec := yaml.NewDecoder(strings.NewReader(text))
	var stream yaml.Node
	err := dec.Decode(&stream)
	switch {
	case errors.Is(err, io.EOF):
		doc.Root = emptyRoot()
		return doc, nil
	case err != nil:
		return nil, newSyntaxError(err)
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil && !isEmptyDocument(&extra):
		return nil, syntaxErrorAt(extra.Line, 0, "multiple documents are not supported")
	case err != nil && !errors.Is(err, io.EOF):
		return nil, newSyntaxError(err)
	}

	root := &stream
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			doc.Root = emptyRoot()
			return doc, nil
		}
		root = root.Content[0]
	}
	if isImplicitNull(root) {
		doc.Root = emptyRoot()
		return doc, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrNotMapping, "line %d: found a %s", root.Line, describe(root))
	}

	a := &annotator{text: text, lines: doc.lines, anchors: make(map[*yaml.Node]any)}
	start := a.start(root)
	node, err := a.node(root, nil, rootBound(text, start), 0, false)
	if err != nil {
		return nil, err
	}
	doc.Root = node
	return doc, nil
}

// Slice returns the source text of span with the indentation of its first line
// removed from the following lines, so a nested node reads as a standalone document.
func (d *Document) Slice(span Span) string {
	return dedentTail(d.Source[span.Start:span.End], column(d.Source, span.Start))
}

// Position converts a byte offset into a 1-based line and column.
func (d *Document) Position(offset int) Position {
	return d.lines.position(offset)
}

func emptyRoot() *Node {
	return &Node{Kind: MappingKind, Value: map[string]any{}}
}

// rootBound is where the root node must end: the end of the text or a "..." document
// end marker.
func rootBound(text string, start int) int {
	for p := lineAfter(text, start); p < len(text); p = lineAfter(text, p) {
		line := strings.TrimRight(text[p:lineEndOf(text, p)], " \t\r")
		if line == "..." || strings.HasPrefix(line, "... ") {
			return p
		}
	}
	return len(text)
}

func isEmptyDocument(n *yaml.Node) bool {
	return n.Kind == yaml.DocumentNode && (len(n.Content) == 0 || isImplicitNull(n.Content[0]))
}

func isImplicitNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null" && n.Value == "" && n.Style == 0 && n.Anchor == ""
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// annotator walks a yaml.v3 tree and builds the span-annotated Node tree.
type annotator struct {
	text    string
	lines   *lineIndex
	anchors map[*yaml.Node]any
}

func (a *annotator) start(n *yaml.Node) int {
	return a.lines.offset(n.Line, n.Column)
}

// node annotates yn. bound is the offset the node cannot extend past (the start of
// the line holding the next sibling), owner is the indentation of the entry owning
// the node, and flow is set inside flow collections.
func (a *annotator) node(yn *yaml.Node, path Path, bound, owner int, flow bool) (*Node, error) {
	var (
		n   *Node
		err error
	)
	switch yn.Kind {
	case yaml.MappingNode:
		n, err = a.mapping(yn, path, bound, owner, flow)
	case yaml.SequenceNode:
		n, err = a.sequence(yn, path, bound, owner, flow)
	case yaml.ScalarNode:
		n, err = a.scalar(yn, path, bound, owner, flow)
	case yaml.AliasNode:
		n = a.alias(yn, path)
	default:
		return nil, syntaxErrorAt(yn.Line, yn.Column, "unexpected %s", describe(yn))
	}
	if err != nil {
		return nil, err
	}
	if yn.Anchor != "" {
		a.anchors[yn] = n.Value
	}
	return n, nil
}

func (a *annotator) scalar(yn *yaml.Node, path Path, bound, owner int, flow bool) (*Node, error) {
	var value any
	if err := yn.Decode(&value); err != nil {
		return nil, &SyntaxError{Line: yn.Line, Column: yn.Column, Msg: err.Error(), Err: err}
	}
	start := a.start(yn)
	var end int
	switch {
	case yn.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		end = quotedEnd(a.text, start)
	case yn.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		end = blockScalarEnd(a.text, start, bound, owner)
	case flow:
		end = flowPlainEnd(a.text, start, bound)
	default:
		end = plainEnd(a.text, start, bound)
	}
	return &Node{
		Kind:  ScalarKind,
		Value: value,
		Text:  yn.Value,
		Tag:   yn.Tag,
		Path:  path,
		Span:  Span{Start: start, End: max(start, end)},
	}, nil
}

func (a *annotator) alias(yn *yaml.Node, path Path) *Node {
	start := a.start(yn)
	n := &Node{Kind: ScalarKind, Text: "*" + yn.Value, Path: path, Span: Span{Start: start, End: aliasEnd(a.text, start)}}
	if target := yn.Alias; target != nil {
		n.Value = a.anchors[target]
		n.Tag = target.Tag
		switch target.Kind {
		case yaml.MappingNode:
			n.Kind = MappingKind
		case yaml.SequenceNode:
			n.Kind = SequenceKind
		}
	}
	return n
}

// emptyValue builds the node of an implicit null: a zero-length span at at.
func emptyValue(path Path, at int) *Node {
	return &Node{Kind: ScalarKind, Tag: "!!null", Path: path, Span: Span{Start: at, End: at}}
}

func (a *annotator) mapping(yn *yaml.Node, path Path, bound, owner int, flow bool) (*Node, error) {
	start := a.start(yn)
	n := &Node{Kind: MappingKind, Tag: yn.Tag, Path: path, Flow: yn.Style&yaml.FlowStyle != 0}
	bracketed := (flow || n.Flow) && opensFlow(a.text, start)
	childFlow := flow || bracketed
	end := -1
	if bracketed {
		end = flowEnd(a.text, start)
		bound = end - 1
	}

	count := len(yn.Content) / 2
	keyStarts := make([]int, count)
	entryStarts := make([]int, count)
	for i := 0; i < count; i++ {
		k := yn.Content[2*i]
		if k.Kind != yaml.ScalarNode {
			return nil, syntaxErrorAt(k.Line, k.Column, "complex mapping keys are not supported")
		}
		keyStarts[i] = a.start(k)
		entryStarts[i] = keyStarts[i]
		if !childFlow {
			entryStarts[i] = leadingComment(a.text, keyStarts[i])
		}
	}

	value := make(map[string]any, count)
	firstLine := make(map[string]int, count)
	var merges []any
	n.Entries = make([]*Entry, 0, count)
	for i := 0; i < count; i++ {
		k, v := yn.Content[2*i], yn.Content[2*i+1]
		if k.Tag != mergeTag {
			if line, dup := firstLine[k.Value]; dup {
				return nil, syntaxErrorAt(k.Line, k.Column, "duplicate key %q (first defined at line %d)", k.Value, line)
			}
			firstLine[k.Value] = k.Line
		}

		entryBound := bound
		if i+1 < count {
			entryBound = lineStartOf(a.text, entryStarts[i+1])
			if childFlow {
				entryBound = entryStarts[i+1]
			}
		}

		keyStart := keyStarts[i]
		keyEnd := a.keyEnd(k, keyStart, entryBound, childFlow)
		valueFrom := keyEnd
		if p := skipBlanks(a.text, keyEnd); p < len(a.text) && a.text[p] == ':' {
			valueFrom = p + 1
		}

		childPath := path.Key(k.Value)
		var child *Node
		if isImplicitNull(v) {
			child = emptyValue(childPath, valueFrom)
		} else {
			var err error
			child, err = a.node(v, childPath, entryBound, keyStart-lineStartOf(a.text, keyStart), childFlow)
			if err != nil {
				return nil, err
			}
		}

		e := &Entry{
			Key:       k.Value,
			Index:     i,
			KeySpan:   Span{Start: keyStart, End: keyEnd},
			Comment:   Span{Start: entryStarts[i], End: commentEnd(a.text, entryStarts[i], keyStart)},
			Span:      Span{Start: entryStarts[i], End: max(child.Span.End, valueFrom)},
			Value:     child,
			valueFrom: valueFrom,
		}
		n.Entries = append(n.Entries, e)

		if k.Tag == mergeTag {
			merges = append(merges, child.Value)
			continue
		}
		value[k.Value] = child.Value
	}
	applyMerges(value, merges)
	n.Value = value

	switch {
	case bracketed:
		n.Span = Span{Start: start, End: end}
	case len(n.Entries) > 0:
		n.Span = Span{Start: start, End: n.Entries[len(n.Entries)-1].Span.End}
	default:
		n.Span = Span{Start: start, End: start}
	}
	return n, nil
}

// applyMerges folds "<<" merge values into value without overriding explicit keys.
func applyMerges(value map[string]any, merges []any) {
	for _, m := range merges {
		sources := []any{m}
		if list, ok := m.([]any); ok {
			sources = list
		}
		for _, src := range sources {
			fields, ok := src.(map[string]any)
			if !ok {
				continue
			}
			for k, v := range fields {
				if _, exists := value[k]; !exists {
					value[k] = v
				}
			}
		}
	}
}

func (a *annotator) keyEnd(k *yaml.Node, start, bound int, flow bool) int {
	switch {
	case k.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		return quotedEnd(a.text, start)
	case flow:
		return flowPlainEnd(a.text, start, bound)
	default:
		return plainKeyEnd(a.text, start)
	}
}

func skipBlanks(text string, off int) int {
	for off < len(text) && (text[off] == ' ' || text[off] == '\t') {
		off++
	}
	return off
}

func (a *annotator) sequence(yn *yaml.Node, path Path, bound, owner int, flow bool) (*Node, error) {
	start := a.start(yn)
	n := &Node{Kind: SequenceKind, Tag: yn.Tag, Path: path, Flow: flow || yn.Style&yaml.FlowStyle != 0}
	if n.Flow {
		return a.flowSequence(n, yn, start, owner)
	}

	count := len(yn.Content)
	dashes := make([]int, count)
	entryStarts := make([]int, count)
	for i, item := range yn.Content {
		itemStart := a.start(item)
		dash := dashBefore(a.text, itemStart)
		if i == 0 && start < len(a.text) && a.text[start] == '-' {
			dash = start
		}
		if dash < 0 {
			dash = itemStart
		}
		dashes[i] = dash
		entryStarts[i] = leadingComment(a.text, dash)
	}

	values := make([]any, 0, count)
	n.Entries = make([]*Entry, 0, count)
	for i, item := range yn.Content {
		itemBound := bound
		if i+1 < count {
			itemBound = lineStartOf(a.text, entryStarts[i+1])
		}
		dash := dashes[i]
		childPath := path.Index(i)
		var child *Node
		if isImplicitNull(item) {
			child = emptyValue(childPath, dash+1)
		} else {
			var err error
			child, err = a.node(item, childPath, itemBound, dash-lineStartOf(a.text, dash), false)
			if err != nil {
				return nil, err
			}
		}
		n.Entries = append(n.Entries, &Entry{
			Index:     i,
			KeySpan:   Span{Start: dash, End: dash + 1},
			Comment:   Span{Start: entryStarts[i], End: commentEnd(a.text, entryStarts[i], dash)},
			Span:      Span{Start: entryStarts[i], End: max(child.Span.End, dash+1)},
			Value:     child,
			valueFrom: dash + 1,
		})
		values = append(values, child.Value)
	}
	n.Value = values
	if len(n.Entries) > 0 {
		n.Span = Span{Start: start, End: n.Entries[len(n.Entries)-1].Span.End}
	} else {
		n.Span = Span{Start: start, End: start}
	}
	return n, nil
}

func (a *annotator) flowSequence(n *Node, yn *yaml.Node, start, owner int) (*Node, error) {
	end := flowEnd(a.text, start)
	values := make([]any, 0, len(yn.Content))
	n.Entries = make([]*Entry, 0, len(yn.Content))
	for i, item := range yn.Content {
		child, err := a.node(item, n.Path.Index(i), end-1, owner, true)
		if err != nil {
			return nil, err
		}
		n.Entries = append(n.Entries, &Entry{
			Index:     i,
			KeySpan:   Span{Start: child.Span.Start, End: child.Span.Start},
			Comment:   Span{Start: child.Span.Start, End: child.Span.Start},
			Span:      child.Span,
			Value:     child,
			valueFrom: child.Span.Start,
		})
		values = append(values, child.Value)
	}
	n.Value = values
	n.Span = Span{Start: start, End: end}
	return n, nil
}
