package ai

import (
	"encoding/json"
)

type FieldType string

const (
	FieldString      FieldType = "string"
	FieldNumber      FieldType = "number"
	FieldStringArray FieldType = "string_array"
)

// Field is one required property of a structured response.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enum        []string
}

// Schema describes a flat JSON object whose fields are all required.
type Schema struct {
	Fields []Field
}

// JSONSchema renders the schema as a draft-07 JSON Schema document.
func (s *Schema) JSONSchema() (string, error) {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, f := range s.Fields {
		var prop map[string]any
		switch f.Type {
		case FieldNumber:
			prop = map[string]any{"type": "number"}
		case FieldStringArray:
			prop = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		default:
			prop = map[string]any{"type": "string"}
			if len(f.Enum) > 0 {
				prop["enum"] = f.Enum
			}
		}
		properties[f.Name] = prop
		required = append(required, f.Name)
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"required":   required,
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WithoutEnums returns a copy of s whose string fields accept any value.
func (s *Schema) WithoutEnums() *Schema {
	out := &Schema{Fields: make([]Field, len(s.Fields))}
	copy(out.Fields, s.Fields)
	for i := range out.Fields {
		out.Fields[i].Enum = nil
	}
	return out
}
