// Package flowdoc edits YAML flow documents without disturbing the bytes a caller
// did not ask to change.
//
// A flow document is a mapping whose container fields (by default "tasks") hold
// sequences of task maps identified by "id". Task maps may nest further containers
// to any depth. Every operation takes the current document text, parses it into a
// span-annotated tree, and returns either a derived value or a new document string in
// which everything outside the edited span is reproduced verbatim: comments, blank
// lines, key order, quoting and indentation of untouched siblings.
//
// The package holds no state between calls and performs no I/O.
package flowdoc
