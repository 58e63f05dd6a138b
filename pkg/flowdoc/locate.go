package flowdoc

// DefaultContainerField is the field holding child tasks when callers pass "".
const DefaultContainerField = "tasks"

// TaskMatch describes a task located in a document.
type TaskMatch struct {
	ID    string         `json:"id"`
	Value map[string]any `json:"value"`
	// Span covers the task's leading comment, its "-" indicator and its body.
	Span Span `json:"span"`
	// ValueSpan covers the task mapping only.
	ValueSpan Span `json:"valueSpan"`
	// Source is the task mapping text, dedented to column zero.
	Source    string `json:"source"`
	Path      string `json:"path"`
	Container string `json:"container"`
	Index     int    `json:"index"`
	Depth     int    `json:"depth"`
	ParentID  string `json:"parentId,omitempty"`

	// field is the container entry holding the task.
	field *Entry
}

// FindTask returns the first task (in document order) whose id equals taskID, looking
// through containerField and every other task container at any depth. A nil match
// with a nil error means the task does not exist.
func FindTask(document, taskID, containerField string) (*TaskMatch, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	return doc.FindTask(taskID, containerField), nil
}

// FindTask is the Document form of the package-level FindTask.
func (d *Document) FindTask(taskID, containerField string) *TaskMatch {
	var found *TaskMatch
	d.walkTasks(containerField, func(m *TaskMatch) bool {
		if m.ID == taskID {
			found = m
			return false
		}
		return true
	})
	return found
}

// HasTask reports whether a task with taskID exists in the document.
func HasTask(document, taskID, containerField string) (bool, error) {
	m, err := FindTask(document, taskID, containerField)
	return m != nil, err
}

// TaskIDs lists every task id in document order.
func TaskIDs(document, containerField string) ([]string, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	var ids []string
	doc.walkTasks(containerField, func(m *TaskMatch) bool {
		ids = append(ids, m.ID)
		return true
	})
	return ids, nil
}

// TaskAtPosition returns the innermost task whose span holds offset, or nil.
func TaskAtPosition(document string, offset int, containerField string) (*TaskMatch, error) {
	doc, err := ParseDocument(document)
	if err != nil {
		return nil, err
	}
	var found *TaskMatch
	doc.walkTasks(containerField, func(m *TaskMatch) bool {
		if m.Span.covers(offset) {
			found = m
		}
		return true
	})
	return found, nil
}

// taskFrame is a pending sequence item on the traversal worklist.
type taskFrame struct {
	entry    *Entry
	field    *Entry
	depth    int
	parentID string
}

// walkTasks visits task candidates depth-first, pre-order, in document order, until
// visit returns false. The root mapping is the flow itself and is never a candidate.
// An explicit stack keeps deep nesting off the goroutine stack.
func (d *Document) walkTasks(containerField string, visit func(*TaskMatch) bool) {
	if containerField == "" {
		containerField = DefaultContainerField
	}
	stack := pushContainers(nil, d.Root, containerField, 0, "")
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.entry.Value
		if n.Kind != MappingKind {
			continue
		}
		parentID := f.parentID
		if m := d.taskMatch(f); m != nil {
			if !visit(m) {
				return
			}
			parentID = m.ID
		}
		stack = pushContainers(stack, n, containerField, f.depth+1, parentID)
	}
}

// pushContainers pushes the items of every container field of n so that they pop in
// document order. A mapping field whose values are task lists (switch-style cases) is
// treated as a set of containers, one per branch key.
func pushContainers(stack []taskFrame, n *Node, containerField string, depth int, parentID string) []taskFrame {
	if n == nil || n.Kind != MappingKind {
		return stack
	}
	for i := len(n.Entries) - 1; i >= 0; i-- {
		e := n.Entries[i]
		named := e.Key == containerField && e.Value.Kind == SequenceKind
		switch {
		case named || e.Value.isTaskContainer():
			stack = pushItems(stack, e, depth, parentID)
		case e.Value.Kind == MappingKind:
			branches := e.Value.Entries
			for j := len(branches) - 1; j >= 0; j-- {
				if branches[j].Value.isTaskContainer() {
					stack = pushItems(stack, branches[j], depth, parentID)
				}
			}
		}
	}
	return stack
}

func pushItems(stack []taskFrame, field *Entry, depth int, parentID string) []taskFrame {
	items := field.Value.Entries
	for j := len(items) - 1; j >= 0; j-- {
		stack = append(stack, taskFrame{
			entry:    items[j],
			field:    field,
			depth:    depth,
			parentID: parentID,
		})
	}
	return stack
}

func (d *Document) taskMatch(f taskFrame) *TaskMatch {
	n := f.entry.Value
	id := n.Field("id")
	if id == nil || id.Kind != ScalarKind {
		return nil
	}
	return &TaskMatch{
		ID:        id.Text,
		Value:     n.Value.(map[string]any),
		Span:      f.entry.Span,
		ValueSpan: n.Span,
		Source:    d.Slice(n.Span),
		Path:      n.Path.String(),
		Container: f.field.Key,
		Index:     f.entry.Index,
		Depth:     f.depth,
		ParentID:  f.parentID,
		field:     f.field,
	}
}
