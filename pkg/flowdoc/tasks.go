package flowdoc

import (
	"strings"

	"github.com/pkg/errors"
)

// InsertPosition places a new task relative to its anchor.
type InsertPosition int

const (
	After InsertPosition = iota
	Before
)

func (p InsertPosition) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// ReplaceTask replaces the task taskID, including its leading comment, with
// newTaskText. newTaskText is a task mapping at any indentation, without the "-"
// indicator. It returns false when no task has that id. The output is re-parsed
// before it is returned, so a replacement that would corrupt the document fails.
func ReplaceTask(document, taskID, newTaskText, containerField string) (string, bool, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", false, err
	}
	m := doc.FindTask(taskID, containerField)
	if m == nil {
		return "", false, nil
	}
	if err := checkEditable(document, m); err != nil {
		return "", false, err
	}
	task, _, err := prepareTask(newTaskText)
	if err != nil {
		return "", false, err
	}
	out, err := ReplaceSpan(document, m.Span, itemText(task))
	if err != nil {
		return "", false, err
	}
	if err := verify(out); err != nil {
		return "", false, errors.Wrapf(err, "replacing task %q", taskID)
	}
	return out, true, nil
}

// DeleteTask removes the task taskID and its leading comment. Removing the last task
// of a container leaves an empty flow sequence ("tasks: []"). It returns false when
// no task has that id.
func DeleteTask(document, taskID, containerField string) (string, bool, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", false, err
	}
	m := doc.FindTask(taskID, containerField)
	if m == nil {
		return "", false, nil
	}
	if err := checkEditable(document, m); err != nil {
		return "", false, err
	}
	var out string
	if len(m.field.Value.Entries) == 1 {
		region := Span{Start: m.field.valueFrom, End: m.field.Value.Span.End}
		out, err = ReplaceSpan(document, region, " []")
	} else {
		out, err = ReplaceSpan(document, wholeLines(document, m.Span), "")
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// InsertTask inserts newTaskText as a sibling of the task anchorID, before or after
// it, at the anchor's indentation. The new task must carry an id not used anywhere
// in the document. It returns false when the anchor does not exist.
func InsertTask(
	document, anchorID, newTaskText string,
	pos InsertPosition,
	containerField string,
) (string, bool, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", false, err
	}
	anchor := doc.FindTask(anchorID, containerField)
	if anchor == nil {
		return "", false, nil
	}
	if err := checkEditable(document, anchor); err != nil {
		return "", false, err
	}
	task, parsed, err := prepareTask(newTaskText)
	if err != nil {
		return "", false, err
	}
	id := parsed.Root.Field("id")
	if id == nil || id.Kind != ScalarKind {
		return "", false, ErrMissingID
	}
	if doc.FindTask(id.Text, containerField) != nil {
		return "", false, errors.Wrapf(ErrTaskExists, "task %q", id.Text)
	}

	pad := strings.Repeat(" ", lineIndent(document, anchor.Span.Start))
	block := pad + indentTail(itemText(task), pad)
	var out string
	switch at := lineAfter(document, anchor.Span.End); {
	case pos == Before:
		at = lineStartOf(document, anchor.Span.Start)
		out = document[:at] + block + "\n" + document[at:]
	case at == len(document) && !strings.HasSuffix(document, "\n"):
		out = document + "\n" + block
	default:
		out = document[:at] + block + "\n" + document[at:]
	}
	if err := verify(out); err != nil {
		return "", false, errors.Wrapf(err, "inserting task %q %s %q", id.Text, pos, anchorID)
	}
	return out, true, nil
}

// SwapTasks exchanges the positions of two tasks. Leading comments move with their
// task and each task is re-indented to the position it moves to. It returns false
// when either task does not exist.
func SwapTasks(document, idA, idB, containerField string) (string, bool, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return "", false, err
	}
	a, b := doc.FindTask(idA, containerField), doc.FindTask(idB, containerField)
	if a == nil || b == nil {
		return "", false, nil
	}
	if a.Span == b.Span {
		return document, true, nil
	}
	for _, m := range []*TaskMatch{a, b} {
		if err := checkEditable(document, m); err != nil {
			return "", false, err
		}
	}
	if a.Span.overlaps(b.Span) {
		return "", false, errors.Wrapf(ErrNestedTasks, "%q and %q", idA, idB)
	}
	if b.Span.Start < a.Span.Start {
		a, b = b, a
	}
	textA, textB := doc.Slice(a.Span), doc.Slice(b.Span)
	out, err := ReplaceSpan(document, b.Span, textA)
	if err != nil {
		return "", false, err
	}
	out, err = ReplaceSpan(out, a.Span, textB)
	if err != nil {
		return "", false, err
	}
	if err := verify(out); err != nil {
		return "", false, errors.Wrapf(err, "swapping %q and %q", idA, idB)
	}
	return out, true, nil
}

// checkEditable reports whether a task can be rewritten line by line.
func checkEditable(document string, m *TaskMatch) error {
	if m.field.Value.Flow {
		return errors.Wrapf(ErrFlowStyle, "task %q in %s", m.ID, m.field.Key)
	}
	if !startsLine(document, m.Span.Start) {
		return errors.Wrapf(ErrLayout, "task %q at %s", m.ID, m.Path)
	}
	if !restIsTrivia(document, m.Span.End) {
		return errors.Wrapf(ErrLayout, "task %q is followed by content on its last line", m.ID)
	}
	return nil
}

// prepareTask canonicalizes caller-provided task text: whitespace is normalized, the
// common indentation removed, and the result must parse as a non-empty mapping.
func prepareTask(text string) (string, *Document, error) {
	task := dedentBlock(normalizeWhitespace(text))
	doc, err := ParseDocument(task)
	if err != nil {
		return "", nil, errors.Wrap(err, "invalid task text")
	}
	if len(doc.Root.Entries) == 0 {
		return "", nil, errors.Wrap(ErrNotMapping, "task text is empty")
	}
	return task, doc, nil
}

// itemText turns a task mapping into a block sequence item.
func itemText(task string) string {
	return "- " + indentTail(task, "  ")
}

func verify(document string) error {
	_, err := ParseDocument(document)
	return err
}
