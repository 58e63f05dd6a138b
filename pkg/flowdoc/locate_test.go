package flowdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTaskFlow = `id: review-flow
version: 1.0.0
tasks:
  # comment for A
  - id: task-a
    type: basic
    action: analyze
  # comment for B
  - id: task-b
    type: basic
    action: summarize
`

const deepFlow = `id: deep
tasks:
  - id: level-1
    type: parallel
    tasks:
      - id: level-2
        type: parallel
        tasks:
          - id: level-3
            type: parallel
            tasks:
              - id: level-4
                type: basic
  - id: sibling
    type: basic
`

const switchFlow = `id: f
tasks:
  - id: s
    type: Switch
    cases:
      A:
        - id: inner
          type: Log
      B:
        - id: other
          type: Log
    defaults:
      - id: fallback
        type: Log
`

func TestFindTask(t *testing.T) {
	t.Run("Should locate a top-level task with its comment and body", func(t *testing.T) {
		m, err := FindTask(twoTaskFlow, "task-a", "")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "task-a", m.ID)
		assert.Equal(t, "analyze", m.Value["action"])
		assert.Equal(t,
			"# comment for A\n  - id: task-a\n    type: basic\n    action: analyze",
			twoTaskFlow[m.Span.Start:m.Span.End],
		)
		assert.Equal(t, "id: task-a\ntype: basic\naction: analyze", m.Source)
		assert.Equal(t, "tasks[0]", m.Path)
		assert.Equal(t, "tasks", m.Container)
		assert.Equal(t, 0, m.Depth)
		assert.Empty(t, m.ParentID)
	})

	t.Run("Should return nil without error when the task does not exist", func(t *testing.T) {
		m, err := FindTask(twoTaskFlow, "nonexistent-id", "tasks")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("Should locate tasks nested four levels deep", func(t *testing.T) {
		m, err := FindTask(deepFlow, "level-4", "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "tasks[0].tasks[0].tasks[0].tasks[0]", m.Path)
		assert.Equal(t, 3, m.Depth)
		assert.Equal(t, "level-3", m.ParentID)
		assert.Equal(t, "id: level-4\ntype: basic", m.Source)
	})

	t.Run("Should follow other fields holding task lists", func(t *testing.T) {
		doc := `id: routing
tasks:
  - id: router
    type: router
    routes:
      - id: approve
        type: basic
      - id: reject
        type: basic
`
		m, err := FindTask(doc, "reject", "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "routes", m.Container)
		assert.Equal(t, 1, m.Index)
		assert.Equal(t, "router", m.ParentID)
	})

	t.Run("Should locate tasks inside switch cases", func(t *testing.T) {
		m, err := FindTask(switchFlow, "inner", "")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "A", m.Container)
		assert.Equal(t, "tasks[0].cases.A[0]", m.Path)
		assert.Equal(t, "s", m.ParentID)
		assert.Equal(t, 1, m.Depth)
		assert.Equal(t, "id: inner\ntype: Log", m.Source)
	})

	t.Run("Should use a custom container field", func(t *testing.T) {
		doc := "id: custom\nsteps:\n  - id: one\n    run: a\n  - id: two\n    run: b\n"
		m, err := FindTask(doc, "two", "steps")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "b", m.Value["run"])
	})

	t.Run("Should not treat the flow itself as a task", func(t *testing.T) {
		m, err := FindTask(twoTaskFlow, "review-flow", "tasks")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("Should return the first match in document order for duplicate ids", func(t *testing.T) {
		doc := `tasks:
  - id: outer
    tasks:
      - id: dup
        action: inner
  - id: dup
    action: outer
`
		m, err := FindTask(doc, "dup", "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "inner", m.Value["action"])
	})

	t.Run("Should locate tasks in flow-style containers", func(t *testing.T) {
		m, err := FindTask("tasks: [{id: a, type: basic}, {id: b, type: basic}]\n", "b", "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "{id: b, type: basic}", m.Source)
	})

	t.Run("Should propagate syntax errors", func(t *testing.T) {
		_, err := FindTask("tasks: [", "a", "tasks")
		assert.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("Should handle nesting deeper than any fixed limit", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("tasks:\n")
		const depth = 200
		for i := range depth {
			pad := strings.Repeat("    ", i)
			b.WriteString(pad + "  - id: t" + strings.Repeat("x", i) + "\n")
			b.WriteString(pad + "    tasks:\n")
		}
		b.WriteString(strings.Repeat("    ", depth) + "  - id: leaf\n")
		m, err := FindTask(b.String(), "leaf", "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, depth, m.Depth)
	})
}

func TestTaskIDs(t *testing.T) {
	t.Run("Should list task ids in document order", func(t *testing.T) {
		ids, err := TaskIDs(deepFlow, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"level-1", "level-2", "level-3", "level-4", "sibling"}, ids)
	})

	t.Run("Should list switch branches in document order", func(t *testing.T) {
		ids, err := TaskIDs(switchFlow, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"s", "inner", "other", "fallback"}, ids)
	})

	t.Run("Should ignore mappings whose values are not task lists", func(t *testing.T) {
		doc := "tasks:\n  - id: a\n    with:\n      names:\n        - first\n        - second\n"
		ids, err := TaskIDs(doc, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids)
	})
}

func TestHasTask(t *testing.T) {
	t.Run("Should report whether a task exists", func(t *testing.T) {
		ok, err := HasTask(deepFlow, "level-3", "tasks")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = HasTask(deepFlow, "missing", "tasks")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTaskAtPosition(t *testing.T) {
	t.Run("Should return the innermost task holding the offset", func(t *testing.T) {
		offset := strings.Index(deepFlow, "type: basic")
		m, err := TaskAtPosition(deepFlow, offset, "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "level-4", m.ID)
	})

	t.Run("Should return the owning task from its leading comment", func(t *testing.T) {
		offset := strings.Index(twoTaskFlow, "comment for B")
		m, err := TaskAtPosition(twoTaskFlow, offset, "tasks")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "task-b", m.ID)
	})

	t.Run("Should return a task inside a switch branch", func(t *testing.T) {
		offset := strings.Index(switchFlow, "id: other")
		m, err := TaskAtPosition(switchFlow, offset, "")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "other", m.ID)
	})

	t.Run("Should return nil outside any task", func(t *testing.T) {
		m, err := TaskAtPosition(twoTaskFlow, 3, "tasks")
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}
