package form

import (
	"encoding/json"
	"fmt"
	"math"
)

// Schema is the decoded JSON document describing a form's fields and
// settings. It stays untyped until ValidateSchema has accepted it.
type Schema map[string]any

// Option is one choice of a select or radio field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDefinition is the typed view of one validated schema field.
type FieldDefinition struct {
	Key         string
	Type        string
	Label       string
	Placeholder string
	Required    bool
	Options     []Option
	Validation  map[string]any
}

// ParseSchema decodes raw JSON into a Schema. Empty input yields an empty schema.
func ParseSchema(raw []byte) (Schema, error) {
	if len(raw) == 0 {
		return Schema{}, nil
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &SchemaError{Message: "Schéma JSON invalide"}
	}
	if s == nil {
		s = Schema{}
	}
	return s, nil
}

// Clone returns a deep copy so stored versions never share maps.
func (s Schema) Clone() Schema {
	if s == nil {
		return Schema{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return Schema{}
	}
	var out Schema
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return Schema{}
	}
	return out
}

// Fields returns the field definitions in schema order. Fields without an
// id get a positional key field_<n>. The schema must already be valid.
func (s Schema) Fields() []FieldDefinition {
	items, ok := asSlice(s["fields"])
	if !ok {
		return nil
	}
	defs := make([]FieldDefinition, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		def := FieldDefinition{
			Key:   stringOr(m["id"], fmt.Sprintf("field_%d", i+1)),
			Type:  stringOr(m["type"], ""),
			Label: stringOr(m["label"], ""),
		}
		def.Placeholder = stringOr(m["placeholder"], "")
		if req, ok := m["required"].(bool); ok {
			def.Required = req
		}
		if rules, ok := m["validation"].(map[string]any); ok {
			def.Validation = rules
			if req, ok := rules["required"].(bool); ok && req {
				def.Required = true
			}
		}
		if opts, ok := asSlice(m["options"]); ok {
			for _, o := range opts {
				om, ok := o.(map[string]any)
				if !ok {
					continue
				}
				def.Options = append(def.Options, Option{
					Value: scalarString(om["value"]),
					Label: stringOr(om["label"], ""),
				})
			}
		}
		defs = append(defs, def)
	}
	return defs
}

// FieldKeys returns the set of submission keys accepted by the schema.
func (s Schema) FieldKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, f := range s.Fields() {
		keys[f.Key] = struct{}{}
	}
	return keys
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		if f, ok := toNumber(v); ok {
			if f == math.Trunc(f) {
				return fmt.Sprintf("%d", int64(f))
			}
			return fmt.Sprintf("%g", f)
		}
		return fmt.Sprintf("%v", t)
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func toPositiveInt(v any) (int64, bool) {
	f, ok := toNumber(v)
	if !ok || f < 1 || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
