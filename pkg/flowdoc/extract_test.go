package flowdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentsDoc = `id: extract-flow
alpha:
  name: Alpha
  model: gpt
  # optional note
  note:
beta:
  name: ""
  model: gpt
  note: something
gamma:
  model: gpt
`

var nameAndNote = FieldConditions{"name": Populated, "note": Present}

func TestExtractMaps(t *testing.T) {
	t.Run("Should select only maps meeting every condition", func(t *testing.T) {
		matches, err := ExtractMaps(agentsDoc, nameAndNote)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		m := matches[0]
		assert.Equal(t, "alpha", m.Key)
		assert.Equal(t, map[string]any{"name": "Alpha", "model": "gpt"}, m.Value)
		assert.True(t, strings.HasPrefix(agentsDoc[m.Span.Start:m.Span.End], "alpha:\n  name: Alpha"))
	})

	t.Run("Should report the span of pruned fields", func(t *testing.T) {
		matches, err := ExtractMaps(agentsDoc, nameAndNote)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		require.Len(t, matches[0].Pruned, 1)
		pruned := matches[0].Pruned[0]
		assert.Equal(t, "note", pruned.Field)
		assert.Equal(t, "# optional note\n  note:", agentsDoc[pruned.Span.Start:pruned.Span.End])
		assert.Equal(t, "  # optional note\n  note:\n", agentsDoc[pruned.LineSpan.Start:pruned.LineSpan.End])
	})

	t.Run("Should not modify the parsed document when pruning", func(t *testing.T) {
		_, err := ExtractMaps(agentsDoc, nameAndNote)
		require.NoError(t, err)
		value, err := Parse(agentsDoc)
		require.NoError(t, err)
		assert.Contains(t, value["alpha"], "note")
	})

	t.Run("Should keep populated fields under a presence condition", func(t *testing.T) {
		matches, err := ExtractMaps(agentsDoc, FieldConditions{"note": Present})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "alpha", matches[0].Key)
		assert.Equal(t, "beta", matches[1].Key)
		assert.Equal(t, "something", matches[1].Value["note"])
		assert.Empty(t, matches[1].Pruned)
	})

	t.Run("Should select every map when there are no conditions", func(t *testing.T) {
		matches, err := ExtractMaps(agentsDoc, nil)
		require.NoError(t, err)
		keys := make([]string, 0, len(matches))
		for _, m := range matches {
			keys = append(keys, m.Key)
		}
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, keys)
	})

	t.Run("Should treat empty collections as not populated", func(t *testing.T) {
		doc := "one:\n  tools: []\ntwo:\n  tools: [search]\n"
		matches, err := ExtractMaps(doc, FieldConditions{"tools": Populated})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "two", matches[0].Key)
	})
}

const mergedDoc = `base: &b
  name: x
  note:
other:
  <<: *b
  opt:
`

func TestExtractMaps_MergeKeys(t *testing.T) {
	t.Run("Should evaluate conditions against keys merged from an anchor", func(t *testing.T) {
		matches, err := ExtractMaps(mergedDoc, FieldConditions{"name": Populated, "opt": Present})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		m := matches[0]
		assert.Equal(t, "other", m.Key)
		assert.Equal(t, map[string]any{"name": "x"}, m.Value)
		require.Len(t, m.Pruned, 1)
		assert.Equal(t, "opt", m.Pruned[0].Field)
	})

	t.Run("Should prune empty merged keys without reporting a span", func(t *testing.T) {
		matches, err := ExtractMaps(mergedDoc, FieldConditions{"name": Populated, "note": Present})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, map[string]any{"name": "x"}, matches[0].Value)
		assert.Len(t, matches[0].Pruned, 1)
		assert.Equal(t, map[string]any{"name": "x", "opt": nil}, matches[1].Value)
		assert.Empty(t, matches[1].Pruned)
	})
}

func TestMapAtPosition(t *testing.T) {
	t.Run("Should return the selected map holding the offset", func(t *testing.T) {
		m, err := MapAtPosition(agentsDoc, strings.Index(agentsDoc, "Alpha"), nameAndNote)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "alpha", m.Key)
	})

	t.Run("Should return nil inside a map that is not selected", func(t *testing.T) {
		m, err := MapAtPosition(agentsDoc, strings.Index(agentsDoc, "something"), nameAndNote)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestExtractFieldFromMaps(t *testing.T) {
	t.Run("Should read the field from every map holding it", func(t *testing.T) {
		values, err := ExtractFieldFromMaps(agentsDoc, "name")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "alpha", values[0].Key)
		assert.Equal(t, "Alpha", values[0].Value)
		assert.Equal(t, "beta", values[1].Key)
		assert.Equal(t, "", values[1].Value)
		assert.Equal(t, `""`, agentsDoc[values[1].Span.Start:values[1].Span.End])
	})

	t.Run("Should read merged fields with the span of their map", func(t *testing.T) {
		values, err := ExtractFieldFromMaps(mergedDoc, "name")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "other", values[1].Key)
		assert.Equal(t, "x", values[1].Value)
		assert.Equal(t, "<<: *b\n  opt:", mergedDoc[values[1].Span.Start:values[1].Span.End])
	})
}

func TestCondition_String(t *testing.T) {
	t.Run("Should name each condition", func(t *testing.T) {
		assert.Equal(t, "present", Present.String())
		assert.Equal(t, "populated", Populated.String())
		assert.Equal(t, "unknown", Condition(0).String())
	})
}
