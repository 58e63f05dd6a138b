package flowdoc

import (
	"strings"
	"unicode/utf8"
)

// Source scanning helpers. The YAML decoder reports where nodes start; these helpers
// find where they end and what surrounds them. All offsets are byte offsets.

func lineStartOf(text string, off int) int {
	for off > 0 && text[off-1] != '\n' {
		off--
	}
	return off
}

// lineEndOf returns the offset of the line break ending the line holding off, or
// len(text) on the last line.
func lineEndOf(text string, off int) int {
	if i := strings.IndexByte(text[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(text)
}

// lineAfter returns the offset of the first byte of the line following off.
func lineAfter(text string, off int) int {
	end := lineEndOf(text, off)
	if end < len(text) {
		return end + 1
	}
	return end
}

func indentWidth(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

// lineIndent returns the leading whitespace count of the line holding off.
func lineIndent(text string, off int) int {
	start := lineStartOf(text, off)
	return indentWidth(text[start:lineEndOf(text, start)])
}

// column returns the rune column (0-based) of off within its line.
func column(text string, off int) int {
	return utf8.RuneCountInString(text[lineStartOf(text, off):off])
}

// startsLine reports whether only whitespace precedes off on its line.
func startsLine(text string, off int) bool {
	return strings.TrimLeft(text[lineStartOf(text, off):off], " \t") == ""
}

// restIsTrivia reports whether only whitespace or a comment follows off on its line.
func restIsTrivia(text string, off int) bool {
	rest := strings.TrimLeft(text[off:lineEndOf(text, off)], " \t\r")
	return rest == "" || rest[0] == '#'
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isCommentLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return trimmed != "" && trimmed[0] == '#'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// trimRight moves end back over trailing whitespace, never past start.
func trimRight(text string, start, end int) int {
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return end
}

// contentEnd returns the end of the content in [from, to), cutting a trailing
// " # comment" and whitespace.
func contentEnd(text string, from, to int) int {
	for i := from; i < to; i++ {
		if text[i] == '#' && i > from && (text[i-1] == ' ' || text[i-1] == '\t') {
			to = i
			break
		}
	}
	return trimRight(text, from, to)
}

// wholeLines widens span to the full lines it occupies, including the final line
// break, when nothing but whitespace precedes it and nothing but trivia follows it.
// Otherwise the span is returned unchanged.
func wholeLines(text string, span Span) Span {
	if !startsLine(text, span.Start) || !restIsTrivia(text, span.End) {
		return span
	}
	return Span{Start: lineStartOf(text, span.Start), End: lineAfter(text, span.End)}
}

// leadingComment returns the start of the run of comment-only lines sitting directly
// above off at the same indentation, or off itself when there is none. Nodes that do
// not start their line never carry a leading comment.
func leadingComment(text string, off int) int {
	ls := lineStartOf(text, off)
	if strings.TrimLeft(text[ls:off], " ") != "" {
		return off
	}
	col := off - ls
	start := off
	for ls > 0 {
		prevEnd := ls - 1
		pls := lineStartOf(text, prevEnd)
		line := strings.TrimRight(text[pls:prevEnd], "\r")
		if indentWidth(line) != col || col >= len(line) || line[col] != '#' {
			break
		}
		start = pls + col
		ls = pls
	}
	return start
}

// commentEnd returns the end of the comment run starting at start and ending above
// the line holding off.
func commentEnd(text string, start, off int) int {
	if start >= off {
		return off
	}
	return trimRight(text, start, lineStartOf(text, off))
}

// skipProperties skips anchor (&a) and tag (!t) properties preceding a node's content.
func skipProperties(text string, off int) int {
	for off < len(text) && (text[off] == '&' || text[off] == '!') {
		for off < len(text) && !isSpace(text[off]) {
			off++
		}
		for off < len(text) && isSpace(text[off]) {
			off++
		}
	}
	return off
}

// quotedEnd returns the offset just after the closing quote of the quoted scalar
// starting at (or, past node properties, after) start.
func quotedEnd(text string, start int) int {
	i := skipProperties(text, start)
	if i >= len(text) || (text[i] != '"' && text[i] != '\'') {
		return i
	}
	q := text[i]
	for i++; i < len(text); i++ {
		c := text[i]
		if q == '"' && c == '\\' {
			i++
			continue
		}
		if c != q {
			continue
		}
		if q == '\'' && i+1 < len(text) && text[i+1] == '\'' {
			i++
			continue
		}
		return i + 1
	}
	return len(text)
}

// opensFlow reports whether the node at start begins with a flow collection bracket.
func opensFlow(text string, start int) bool {
	i := skipProperties(text, start)
	return i < len(text) && (text[i] == '[' || text[i] == '{')
}

// flowEnd returns the offset just after the bracket closing the flow collection that
// opens at start.
func flowEnd(text string, start int) int {
	i := skipProperties(text, start)
	depth := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		case (c == '"' || c == '\'') && i > 0 && strings.IndexByte(" \t\r\n[{,:", text[i-1]) >= 0:
			i = quotedEnd(text, i)
			continue
		case c == '#' && i > 0 && isSpace(text[i-1]):
			i = lineEndOf(text, i)
			continue
		}
		i++
	}
	return len(text)
}

// flowPlainEnd returns the end of a plain scalar inside a flow collection.
func flowPlainEnd(text string, start, bound int) int {
	i := start
	for ; i < bound; i++ {
		c := text[i]
		if c == ',' || c == ']' || c == '}' || c == '\n' || c == '\r' {
			break
		}
		if c == ':' && (i+1 >= len(text) || strings.IndexByte(" \t\r\n,]}", text[i+1]) >= 0) {
			break
		}
		if c == '#' && i > start && (text[i-1] == ' ' || text[i-1] == '\t') {
			break
		}
	}
	return trimRight(text, start, i)
}

// plainKeyEnd returns the end of an implicit block mapping key.
func plainKeyEnd(text string, start int) int {
	end := lineEndOf(text, start)
	i := start
	for ; i < end; i++ {
		if text[i] == ':' && (i+1 >= len(text) || isSpace(text[i+1])) {
			break
		}
	}
	return trimRight(text, start, i)
}

// plainEnd returns the end of a block-context plain scalar: its first line plus any
// continuation lines before bound, stopping at the first comment-only line.
func plainEnd(text string, start, bound int) int {
	le := lineEndOf(text, start)
	end := contentEnd(text, start, le)
	for p := le + 1; p < bound; {
		le = lineEndOf(text, p)
		line := text[p:le]
		switch {
		case isBlank(line):
		case isCommentLine(line):
			return end
		default:
			end = contentEnd(text, p, le)
		}
		p = le + 1
	}
	return end
}

// blockScalarEnd returns the end of a literal or folded block scalar whose indicator
// sits at start: the last non-blank line before bound indented deeper than owner.
func blockScalarEnd(text string, start, bound, owner int) int {
	le := lineEndOf(text, start)
	end := contentEnd(text, start, le)
	for p := le + 1; p < bound; {
		le = lineEndOf(text, p)
		line := text[p:le]
		if !isBlank(line) {
			if indentWidth(line) <= owner {
				break
			}
			end = trimRight(text, p, le)
		}
		p = le + 1
	}
	return end
}

// aliasEnd returns the end of an alias (*name) starting at start.
func aliasEnd(text string, start int) int {
	i := start + 1
	for i < len(text) && !isSpace(text[i]) && strings.IndexByte(",[]{}", text[i]) < 0 {
		i++
	}
	return i
}

// dashBefore finds the "-" indicator of the sequence item whose content starts at
// off, looking back across whitespace, line breaks and comments. It returns -1 when
// there is none.
func dashBefore(text string, off int) int {
	p := off
	for {
		ls := lineStartOf(text, p)
		seg := text[ls:p]
		if i := commentIndex(seg); i >= 0 {
			seg = seg[:i]
		}
		seg = strings.TrimRight(seg, " \t\r")
		if seg != "" {
			if seg[len(seg)-1] == '-' {
				return ls + len(seg) - 1
			}
			return -1
		}
		if ls == 0 {
			return -1
		}
		p = ls - 1
	}
}

// commentIndex returns the index of a comment start within a single line, or -1.
func commentIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return i
		}
	}
	return -1
}

// dedentTail removes up to n leading spaces from every line after the first.
func dedentTail(text string, n int) string {
	if n <= 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		j := 0
		for j < n && j < len(lines[i]) && lines[i][j] == ' ' {
			j++
		}
		lines[i] = lines[i][j:]
	}
	return strings.Join(lines, "\n")
}

// indentTail prefixes every non-blank line after the first with prefix.
func indentTail(text, prefix string) string {
	if prefix == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if isBlank(lines[i]) {
			continue
		}
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// dedentBlock strips the indentation common to all non-blank lines and trims leading
// and trailing blank lines.
func dedentBlock(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	common := -1
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		if w := indentWidth(line); common < 0 || w < common {
			common = w
		}
	}
	for i, line := range lines {
		switch {
		case isBlank(line):
			lines[i] = ""
		case common > 0:
			lines[i] = line[common:]
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t")
}
