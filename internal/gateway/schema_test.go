package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"name":   {Type: TypeString},
				"rating": {Type: TypeNumber, Nullable: true},
			},
			Order:    []string{"name", "rating"},
			Required: []string{"name"},
		},
	}
}

func TestSchemaGemini(t *testing.T) {
	raw, err := testSchema().Gemini()
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "ARRAY", m["type"])

	items := m["items"].(map[string]any)
	assert.Equal(t, "OBJECT", items["type"])
	assert.Equal(t, []any{"name", "rating"}, items["propertyOrdering"])
	assert.Equal(t, []any{"name"}, items["required"])

	rating := items["properties"].(map[string]any)["rating"].(map[string]any)
	assert.Equal(t, "NUMBER", rating["type"])
	assert.Equal(t, true, rating["nullable"])
}

func TestSchemaJSONSchema(t *testing.T) {
	raw, err := testSchema().JSONSchema()
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "array", m["type"])

	items := m["items"].(map[string]any)
	props := items["properties"].(map[string]any)
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, []any{"number", "null"}, props["rating"].(map[string]any)["type"])
	assert.NotContains(t, items, "propertyOrdering")
}
