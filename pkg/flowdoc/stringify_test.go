package flowdoc

import (
	"strings"
	"testing"

	goyaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	t.Run("Should round trip parsed documents", func(t *testing.T) {
		for _, text := range []string{twoTaskFlow, deepFlow} {
			value, err := Parse(text)
			require.NoError(t, err)
			out, err := Stringify(value)
			require.NoError(t, err)
			again, err := Parse(out)
			require.NoError(t, err)
			assert.Equal(t, value, again)
		}
	})

	t.Run("Should produce output other decoders agree on", func(t *testing.T) {
		value, err := Parse(deepFlow)
		require.NoError(t, err)
		out, err := Stringify(value)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, goyaml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "deep", decoded["id"])
		assert.Len(t, decoded["tasks"], 2)
	})

	t.Run("Should order well-known keys first", func(t *testing.T) {
		out, err := Stringify(map[string]any{
			"zeta":    1,
			"tasks":   []any{map[string]any{"type": "basic", "id": "a"}},
			"alpha":   2,
			"id":      "flow",
			"version": "1.0",
		})
		require.NoError(t, err)
		order := []string{"id: flow", "tasks:", "alpha: 2", "version:", "zeta: 1"}
		last := -1
		for _, key := range order {
			i := strings.Index(out, key)
			require.GreaterOrEqual(t, i, 0, key)
			assert.Greater(t, i, last, key)
			last = i
		}
		assert.Less(t, strings.Index(out, "- id: a"), strings.Index(out, "type: basic"))
	})

	t.Run("Should omit nil fields", func(t *testing.T) {
		out, err := Stringify(map[string]any{"id": "x", "description": nil, "labels": map[string]any{"a": nil}})
		require.NoError(t, err)
		assert.NotContains(t, out, "description")
		assert.NotContains(t, out, "null")
		value, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "x", "labels": map[string]any{}}, value)
	})

	t.Run("Should expand escaped newlines into block scalars", func(t *testing.T) {
		out, err := Stringify(map[string]any{"id": "x", "script": `echo a\necho b`})
		require.NoError(t, err)
		assert.Contains(t, out, "script: |\n")
		value, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, "echo a\necho b\n", value["script"])
	})

	t.Run("Should never wrap long lines", func(t *testing.T) {
		long := strings.Repeat("word ", 60) + "end"
		out, err := Stringify(map[string]any{"id": "x", "description": long})
		require.NoError(t, err)
		assert.Equal(t, "id: x\ndescription: "+long+"\n", out)
	})

	t.Run("Should render typed values", func(t *testing.T) {
		out, err := Stringify(map[string][]string{"tags": {"a", "b"}})
		require.NoError(t, err)
		value, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, value["tags"])
	})

	t.Run("Should return an empty string for nil", func(t *testing.T) {
		out, err := Stringify(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
