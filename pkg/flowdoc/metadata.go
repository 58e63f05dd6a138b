package flowdoc

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SetField sets the top-level field key to the scalar value. An existing value is
// replaced in place, keeping its key, its comments and every other byte; a missing
// key is inserted as the first line after the document start. Setting the same value
// twice is a no-op.
func SetField(document, key string, value any) (string, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", err
	}
	if doc.Root.Flow {
		return "", errors.Wrapf(ErrFlowStyle, "setting %q", key)
	}
	scalar, err := formatScalar(value)
	if err != nil {
		return "", errors.Wrapf(err, "setting %q", key)
	}
	e := doc.Root.Lookup(key)
	if e == nil {
		return insertField(document, doc, key, value)
	}

	v := e.Value
	if v.Kind == ScalarKind && !v.Span.IsEmpty() &&
		lineStartOf(document, v.Span.Start) == lineStartOf(document, e.KeySpan.Start) {
		return ReplaceSpan(document, v.Span, scalar)
	}
	return ReplaceSpan(document, Span{Start: e.valueFrom, End: max(e.valueFrom, v.Span.End)}, " "+scalar)
}

func insertField(document string, doc *Document, key string, value any) (string, error) {
	line, err := formatEntry(key, value)
	if err != nil {
		return "", err
	}
	at, err := documentStart(document, doc)
	if err != nil {
		return "", err
	}
	if len(doc.Root.Entries) > 0 {
		pad := strings.Repeat(" ", lineIndent(document, doc.Root.Entries[0].KeySpan.Start))
		line = pad + indentTail(line, pad)
	}
	if at == len(document) && at > 0 && document[at-1] != '\n' {
		line = "\n" + line
	}
	return document[:at] + line + "\n" + document[at:], nil
}

// documentStart returns the offset of the first line after a byte order mark,
// directives and a "---" marker, where new top-level fields go.
func documentStart(document string, doc *Document) (int, error) {
	limit := len(document)
	if len(doc.Root.Entries) > 0 {
		limit = doc.Root.Entries[0].Span.Start
	}
	at := 0
	if strings.HasPrefix(document, "\ufeff") {
		at = len("\ufeff")
	}
	for p := at; p < limit; p = lineAfter(document, p) {
		line := strings.TrimRight(document[p:lineEndOf(document, p)], " \t\r")
		switch {
		case strings.HasPrefix(line, "%"):
			at = lineAfter(document, p)
		case line == "---" || strings.HasPrefix(line, "--- #"):
			return lineAfter(document, p), nil
		case strings.HasPrefix(line, "--- "):
			return 0, errors.Wrap(ErrLayout, "document content starts on the \"---\" line")
		}
	}
	return at, nil
}

// RemoveField deletes the top-level field key along with its leading comment. It
// returns false when the key does not exist.
func RemoveField(document, key string) (string, bool, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", false, err
	}
	e := doc.Root.Lookup(key)
	if e == nil {
		return document, false, nil
	}
	if doc.Root.Flow {
		return "", false, errors.Wrapf(ErrFlowStyle, "removing %q", key)
	}
	lines := wholeLines(document, e.Span)
	if lines == e.Span {
		return "", false, errors.Wrapf(ErrLayout, "field %q does not sit on its own lines", key)
	}
	out, err := ReplaceSpan(document, lines, "")
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// ReplaceIDAndNamespace sets the id and namespace fields of a flow. Fields missing
// from the document are inserted with id above namespace.
func ReplaceIDAndNamespace(document, id, namespace string) (string, error) {
	out, err := SetField(document, "namespace", namespace)
	if err != nil {
		return "", err
	}
	return SetField(out, "id", id)
}

// formatScalar renders value the way it reads after "key: ", including the header
// and indented body of block scalars.
func formatScalar(value any) (string, error) {
	entry, err := formatEntry("x", value)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(entry, "x: "), nil
}

// formatEntry renders a "key: value" mapping entry without the final line break.
func formatEntry(key string, value any) (string, error) {
	var v yaml.Node
	if err := v.Encode(value); err != nil {
		return "", errors.Wrapf(err, "encoding %T", value)
	}
	if v.Kind != yaml.ScalarNode {
		return "", errors.Wrapf(ErrNotScalar, "%T", value)
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	entry := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{k, &v}}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(entry); err != nil {
		return "", errors.Wrapf(err, "encoding %q", key)
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrapf(err, "encoding %q", key)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
