package flowdoc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Document errors
var (
	// ErrSyntax matches every *SyntaxError.
	ErrSyntax = errors.New("invalid yaml")

	// ErrNotMapping indicates that a document (or replacement task) is not a mapping.
	ErrNotMapping = errors.New("document root is not a mapping")

	// ErrFlowStyle indicates an edit inside a flow-style collection ({...} or [...]),
	// which cannot be rewritten line by line.
	ErrFlowStyle = errors.New("flow-style collections cannot be edited in place")

	// ErrLayout indicates a task that does not start its own line (e.g. "- - id: a").
	ErrLayout = errors.New("task does not start its own line")

	// ErrInvalidSpan indicates a span outside the document.
	ErrInvalidSpan = errors.New("span out of range")
)

// Value errors
var (
	// ErrNotScalar indicates a value that does not serialize to a YAML scalar.
	ErrNotScalar = errors.New("value does not serialize to a scalar")
)

// Task errors
var (
	// ErrTaskExists indicates an insert whose task id is already used in the document.
	ErrTaskExists = errors.New("task id already exists")

	// ErrNestedTasks indicates a swap between a task and one of its own descendants.
	ErrNestedTasks = errors.New("tasks are nested in each other")

	// ErrMissingID indicates a task mapping without a scalar "id" field.
	ErrMissingID = errors.New("task has no id")
)

// SyntaxError reports malformed input. Line and Column are 1-based and zero when
// unknown.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("invalid yaml at line %d, column %d: %s", e.Line, e.Column, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("invalid yaml at line %d: %s", e.Line, e.Msg)
	default:
		return fmt.Sprintf("invalid yaml: %s", e.Msg)
	}
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

var yamlLineError = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// newSyntaxError converts a yaml.v3 parser error into a *SyntaxError.
func newSyntaxError(err error) *SyntaxError {
	msg := err.Error()
	if m := yamlLineError.FindStringSubmatch(msg); m != nil {
		line, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return &SyntaxError{Line: line, Msg: m[2], Err: err}
		}
	}
	return &SyntaxError{Msg: strings.TrimPrefix(msg, "yaml: "), Err: err}
}

func syntaxErrorAt(line, column int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Column: column, Msg: fmt.Sprintf(format, args...)}
}
