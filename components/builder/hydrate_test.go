package builder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSchemaShapes(t *testing.T) {
	cases := map[string]string{
		"envelope": `{"data":{"projectBlocks":[{"id":"a","type":"sectionText","order":5,"data":{"title":"x"}},{"id":"b","type":"link","order":9}],"projectSettings":{"circle":true}}}`,
		"object":   `{"projectBlocks":[{"id":"a","type":"sectionText","order":5,"data":{"title":"x"}},{"id":"b","type":"link","order":9}],"projectSettings":{"circle":true}}`,
		"array":    `[{"id":"a","type":"sectionText","order":5,"data":{"title":"x"}},{"id":"b","type":"link","order":9}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := NormalizeSchema(json.RawMessage(raw))
			require.NoError(t, err)
			require.Len(t, doc.Blocks, 2)
			assert.Equal(t, []string{"a", "b"}, blockIDs(doc.Blocks))
			assert.Equal(t, []int{1, 2}, orders(doc.Blocks))
			assert.Equal(t, "x", doc.Blocks[0].Data["title"])
			assert.NotNil(t, doc.Blocks[1].Data)
			if name != "array" {
				assert.True(t, doc.Settings.Circle)
			}
		})
	}
}

func TestNormalizeSchemaEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		doc, err := NormalizeSchema(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Empty(t, doc.Blocks)
	}
	_, err := NormalizeSchema(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestNormalizeSchemaReadsLeftColumn(t *testing.T) {
	doc, err := NormalizeSchema(json.RawMessage(`{"data":{"projectBlocks":[],"projectSettings":{"profileData":{"name":"Ada","avatar":"content/a.png"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "content/a.png", doc.Settings.ProfileData["avatar"])
}
