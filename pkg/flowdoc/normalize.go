package flowdoc

import "strings"

// escapedNewline is the two-character sequence backslash, n.
const escapedNewline = `\n`

var whitespaceReplacer = strings.NewReplacer("\t", "  ", "\u00a0", " ")

// Normalize canonicalizes raw text: tabs become two spaces, non-breaking spaces become
// ordinary spaces, and every literal `\n` sequence becomes a line break. When at least one
// `\n` was expanded a trailing line break is appended.
func Normalize(text string) string {
	text = normalizeWhitespace(text)
	if !strings.Contains(text, escapedNewline) {
		return text
	}
	return strings.ReplaceAll(text, escapedNewline, "\n") + "\n"
}

// normalizeWhitespace applies only the tab and non-breaking-space rules of Normalize.
// It is safe on whole documents, where expanding `\n` would rewrite quoted escapes.
func normalizeWhitespace(text string) string {
	return whitespaceReplacer.Replace(text)
}
