package flowdoc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compozy/flowdoc/test/helpers"
)

func TestEditSequence_Golden(t *testing.T) {
	t.Run("Should preserve everything outside the edited spans", func(t *testing.T) {
		doc := helpers.LoadFixture(t, "pkg/flowdoc/testdata/weather.yaml")

		doc, err := SetField(doc, "id", "weather-v2")
		require.NoError(t, err)
		doc, ok, err := ReplaceTask(doc, "long", "id: long\ntype: basic\naction: essay\nwith:\n  words: 300", "")
		require.NoError(t, err)
		require.True(t, ok)
		doc, ok, err = DeleteTask(doc, "fetch", "")
		require.NoError(t, err)
		require.True(t, ok)

		helpers.CompareWithGolden(t, []byte(doc), "pkg/flowdoc/testdata/weather_edited.golden")
	})
}
