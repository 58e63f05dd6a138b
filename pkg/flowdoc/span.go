package flowdoc

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Span is a half-open [Start, End) byte range into one specific source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether offset falls inside the half-open range.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// covers is Contains with an inclusive end, so a cursor placed right after the last
// byte of a node still resolves to it.
func (s Span) covers(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

func (s Span) validIn(text string) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= len(text)
}

// Position is a 1-based line and rune column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// lineIndex maps between byte offsets and the 1-based line/rune-column positions
// reported by the YAML decoder.
type lineIndex struct {
	text   string
	starts []int
	bom    int
}

func newLineIndex(text string) *lineIndex {
	li := &lineIndex{text: text, starts: []int{0}}
	if strings.HasPrefix(text, "\ufeff") {
		li.bom = len("\ufeff")
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			li.starts = append(li.starts, i+1)
		}
	}
	return li
}

// offset converts a decoder position to a byte offset.
func (li *lineIndex) offset(line, column int) int {
	if line < 1 {
		return 0
	}
	if line > len(li.starts) {
		return len(li.text)
	}
	p := li.starts[line-1]
	if line == 1 {
		p += li.bom
	}
	end := lineEndOf(li.text, p)
	for c := 1; c < column && p < end; c++ {
		_, size := utf8.DecodeRuneInString(li.text[p:])
		p += size
	}
	return p
}

// position converts a byte offset to a 1-based line and rune column.
func (li *lineIndex) position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	start := li.starts[line]
	if line == 0 && offset >= li.bom {
		start += li.bom
	}
	return Position{Line: line + 1, Column: utf8.RuneCountInString(li.text[start:offset]) + 1}
}
