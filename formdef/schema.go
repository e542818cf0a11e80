package formdef

import (
	js "github.com/quharo/formwork/jsonschema"
)

// JSONSchema exports the definition as a JSON Schema object: one property per
// field, the required list from required rules, and the constraints the rule
// set can express. Rules without a schema counterpart are simply omitted.
func (def Definition) JSONSchema() *js.Schema {
	s := &js.Schema{
		Type:       "object",
		Title:      def.Title,
		Properties: make(map[string]*js.Schema, len(def.Fields)),
	}
	for _, f := range def.Fields {
		prop := fieldSchema(f)
		s.Properties[f.Key] = prop
		if hasRule(f, "required") {
			s.Required = append(s.Required, f.Key)
		}
	}
	return s
}

func fieldSchema(f Field) *js.Schema {
	prop := &js.Schema{Title: f.Label}
	t, _ := normalizeType(f.Type)
	switch t {
	case "string":
		prop.Type = "string"
	case "int":
		prop.Type = "integer"
	case "float":
		prop.Type = "number"
	case "bool":
		prop.Type = "boolean"
	case "string[]":
		prop.Type = "array"
		prop.Items = &js.Schema{Type: "string"}
	}
	if f.Initial != nil {
		prop.Default = f.Initial
	}
	for _, r := range f.Rules {
		switch r.Name {
		case "minLength":
			if n, ok := toInt(r.Param); ok {
				prop.MinLength = &n
			}
		case "maxLength":
			if n, ok := toInt(r.Param); ok {
				prop.MaxLength = &n
			}
		case "pattern":
			if expr, ok := toString(r.Param); ok {
				prop.Pattern = expr
			}
		case "email":
			prop.Format = "email"
		case "min":
			if x, ok := toFloat(r.Param); ok {
				prop.Minimum = &x
			}
		case "max":
			if x, ok := toFloat(r.Param); ok {
				prop.Maximum = &x
			}
		case "oneOf":
			if allowed, ok := toStrings(r.Param); ok {
				for _, a := range allowed {
					prop.Enum = append(prop.Enum, a)
				}
			}
		case "minItems":
			if n, ok := toInt(r.Param); ok {
				prop.MinItems = &n
			}
		case "maxItems":
			if n, ok := toInt(r.Param); ok {
				prop.MaxItems = &n
			}
		}
	}
	return prop
}

func hasRule(f Field, name string) bool {
	for _, r := range f.Rules {
		if r.Name == name {
			return true
		}
	}
	return false
}
