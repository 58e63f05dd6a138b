package flowdoc

import (
	"strings"

	"github.com/pkg/errors"
)

// ReplaceSpan replaces span in document with replacement. Every line of replacement
// after the first is indented by the indentation of the line holding span.Start; the
// first line continues from whatever precedes span.Start. Bytes outside span are
// copied unchanged.
func ReplaceSpan(document string, span Span, replacement string) (string, error) {
	if !span.validIn(document) {
		return "", errors.Wrapf(ErrInvalidSpan, "span %s in a document of %d bytes", span, len(document))
	}
	pad := strings.Repeat(" ", lineIndent(document, span.Start))
	var b strings.Builder
	b.Grow(len(document) - span.Len() + len(replacement))
	b.WriteString(document[:span.Start])
	b.WriteString(indentTail(replacement, pad))
	b.WriteString(document[span.End:])
	return b.String(), nil
}
