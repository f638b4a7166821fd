package gateway

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Type is a schema value type.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Schema describes the JSON shape a structured completion must follow. It is
// rendered into each provider's dialect.
type Schema struct {
	Type        Type
	Description string
	Nullable    bool
	Properties  map[string]*Schema
	// Order lists property names in the order the model should emit them.
	Order    []string
	Required []string
	Items    *Schema
}

// Gemini renders the OpenAPI-subset schema accepted by Gemini.
func (s *Schema) Gemini() (json.RawMessage, error) {
	b, err := json.Marshal(s.geminiMap())
	return b, eris.Wrap(err, "gateway: marshal gemini schema")
}

func (s *Schema) geminiMap() map[string]any {
	m := map[string]any{"type": strings.ToUpper(string(s.Type))}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Nullable {
		m["nullable"] = true
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.geminiMap()
		}
		m["properties"] = props
	}
	if len(s.Order) > 0 {
		m["propertyOrdering"] = s.Order
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	if s.Items != nil {
		m["items"] = s.Items.geminiMap()
	}
	return m
}

// JSONSchema renders a standard JSON Schema document.
func (s *Schema) JSONSchema() (json.RawMessage, error) {
	b, err := json.Marshal(s.jsonSchemaMap())
	return b, eris.Wrap(err, "gateway: marshal json schema")
}

func (s *Schema) jsonSchemaMap() map[string]any {
	m := map[string]any{}
	if s.Nullable {
		m["type"] = []string{string(s.Type), "null"}
	} else {
		m["type"] = string(s.Type)
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.jsonSchemaMap()
		}
		m["properties"] = props
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	if s.Items != nil {
		m["items"] = s.Items.jsonSchemaMap()
	}
	return m
}
