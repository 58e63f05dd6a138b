package flowdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetField(t *testing.T) {
	t.Run("Should replace an existing value in place", func(t *testing.T) {
		out, err := SetField("id: old-id\nname: x\n", "id", "new-id")
		require.NoError(t, err)
		assert.Equal(t, "id: new-id\nname: x\n", out)
	})

	t.Run("Should keep inline and leading comments", func(t *testing.T) {
		doc := "# flow id\nid: old # keep me\nname: x\n"
		out, err := SetField(doc, "id", "new")
		require.NoError(t, err)
		assert.Equal(t, "# flow id\nid: new # keep me\nname: x\n", out)
	})

	t.Run("Should fill an empty value", func(t *testing.T) {
		out, err := SetField("id:\nname: x\n", "id", "fresh")
		require.NoError(t, err)
		assert.Equal(t, "id: fresh\nname: x\n", out)
	})

	t.Run("Should insert a missing key at the top", func(t *testing.T) {
		out, err := SetField("# header\nname: x\n", "id", "fresh")
		require.NoError(t, err)
		assert.Equal(t, "id: fresh\n# header\nname: x\n", out)
	})

	t.Run("Should insert after the document start marker", func(t *testing.T) {
		out, err := SetField("# header\n---\nname: x\n", "id", "fresh")
		require.NoError(t, err)
		assert.Equal(t, "# header\n---\nid: fresh\nname: x\n", out)
	})

	t.Run("Should insert into an empty document", func(t *testing.T) {
		out, err := SetField("", "id", "fresh")
		require.NoError(t, err)
		assert.Equal(t, "id: fresh\n", out)
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		for _, doc := range []string{"name: x\n", "id: old\nname: x\n", "id:\nname: x\n"} {
			once, err := SetField(doc, "id", "x")
			require.NoError(t, err)
			twice, err := SetField(once, "id", "x")
			require.NoError(t, err)
			assert.Equal(t, once, twice, doc)
		}
	})

	t.Run("Should quote strings that would read as other types", func(t *testing.T) {
		out, err := SetField("version: 1\n", "version", "1.0")
		require.NoError(t, err)
		value, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, "1.0", value["version"])
	})

	t.Run("Should write non-string scalars", func(t *testing.T) {
		out, err := SetField("retries: 1\n", "retries", 3)
		require.NoError(t, err)
		assert.Equal(t, "retries: 3\n", out)
	})

	t.Run("Should write multi-line strings as block scalars", func(t *testing.T) {
		out, err := SetField("description: old\nid: x\n", "description", "line one\nline two")
		require.NoError(t, err)
		assert.Equal(t, "description: |-\n  line one\n  line two\nid: x\n", out)
		again, err := SetField(out, "description", "line one\nline two")
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})

	t.Run("Should replace a collection with a scalar", func(t *testing.T) {
		out, err := SetField("labels:\n  a: 1\nid: x\n", "labels", "none")
		require.NoError(t, err)
		assert.Equal(t, "labels: none\nid: x\n", out)
	})

	t.Run("Should reject values that are not scalars", func(t *testing.T) {
		_, err := SetField("id: x\n", "labels", map[string]any{"a": 1})
		assert.ErrorIs(t, err, ErrNotScalar)
	})

	t.Run("Should reject flow-style roots", func(t *testing.T) {
		_, err := SetField("{id: a}\n", "id", "b")
		assert.ErrorIs(t, err, ErrFlowStyle)
	})
}

func TestRemoveField(t *testing.T) {
	t.Run("Should remove the field lines with its comment", func(t *testing.T) {
		out, ok, err := RemoveField("# the id\nid: a\nname: x\n", "id")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "name: x\n", out)
	})

	t.Run("Should remove nested values", func(t *testing.T) {
		out, ok, err := RemoveField("id: a\nlabels:\n  team: core\nname: x\n", "labels")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id: a\nname: x\n", out)
	})

	t.Run("Should report missing fields", func(t *testing.T) {
		out, ok, err := RemoveField("id: a\n", "name")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "id: a\n", out)
	})
}

func TestReplaceIDAndNamespace(t *testing.T) {
	t.Run("Should insert id above namespace", func(t *testing.T) {
		out, err := ReplaceIDAndNamespace("name: x\n", "flow-1", "acme")
		require.NoError(t, err)
		assert.Equal(t, "id: flow-1\nnamespace: acme\nname: x\n", out)
	})

	t.Run("Should replace existing values in place", func(t *testing.T) {
		out, err := ReplaceIDAndNamespace("namespace: old\n# keep\nid: old\n", "new-id", "new-ns")
		require.NoError(t, err)
		assert.Equal(t, "namespace: new-ns\n# keep\nid: new-id\n", out)
	})
}
