package sourcemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVLQ_KnownVectors(t *testing.T) {
	assert.Equal(t, "A", encodeVLQ(0))
	assert.Equal(t, "C", encodeVLQ(1))
	assert.Equal(t, "D", encodeVLQ(-1))
	assert.Equal(t, "gqjG", encodeVLQ(100000))
}

func TestBuilder_EmptyProducesValidEmptyMappings(t *testing.T) {
	b := NewBuilder("out.js")
	doc := b.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, float64(3), parsed["version"])
	assert.Equal(t, "out.js", parsed["file"])
	assert.Equal(t, "", parsed["mappings"])
}

func TestBuilder_SingleMappingOnFirstLine(t *testing.T) {
	b := NewBuilder("out.js")
	b.Add(1, 0, 1, 0)
	doc := b.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "AAAA", parsed["mappings"])
}

func TestBuilder_MultipleSegmentsOnSameLineAreCommaJoined(t *testing.T) {
	b := NewBuilder("out.js")
	b.Add(1, 0, 1, 0)
	b.Add(1, 4, 1, 4)
	doc := b.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	mappings := parsed["mappings"].(string)
	assert.Contains(t, mappings, ",")
	assert.NotContains(t, mappings, ";")
}

func TestBuilder_MultipleLinesAreSemicolonJoined(t *testing.T) {
	b := NewBuilder("out.js")
	b.Add(1, 0, 1, 0)
	b.Add(2, 0, 2, 0)
	doc := b.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	mappings := parsed["mappings"].(string)
	assert.Contains(t, mappings, ";")
}

func TestBuilder_SourceContentEmbedsWhenSet(t *testing.T) {
	b := NewBuilder("out.js")
	b.SetSourceContent("var x = 1;")
	doc := b.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	contents, ok := parsed["sourcesContent"].([]interface{})
	require.True(t, ok)
	require.Len(t, contents, 1)
	assert.Equal(t, "var x = 1;", contents[0])
}
