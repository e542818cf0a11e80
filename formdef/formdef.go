// Package formdef loads declarative form definitions from YAML or JSON and
// compiles them into formwork field configs. A definition carries what a
// backend or config file can express: keys, types, initial values, rule names
// with parameters and dependency lists. Anything requiring code (async
// validators, derivations, transforms) is attached afterwards by
// re-registering the field with an extended config.
package formdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Definition is one form described as data.
type Definition struct {
	Name   string  `json:"name" yaml:"name"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field describes one form field. Type selects the Go value type: "string",
// "int", "float" (alias "number"), "bool" or "string[]".
type Field struct {
	Key       string   `json:"key" yaml:"key"`
	Type      string   `json:"type" yaml:"type"`
	Label     string   `json:"label,omitempty" yaml:"label,omitempty"`
	Initial   any      `json:"initial,omitempty" yaml:"initial,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Rules     []Rule   `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Rule names a validation rule with an optional parameter. In YAML a rule may
// be written as a bare name for parameterless rules:
//
//	rules:
//	  - required
//	  - name: minLength
//	    param: 3
type Rule struct {
	Name  string `json:"name" yaml:"name"`
	Param any    `json:"param,omitempty" yaml:"param,omitempty"`
}

// UnmarshalYAML accepts both the scalar shorthand and the mapping form.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&r.Name)
	}
	type plain Rule
	return node.Decode((*plain)(r))
}

// UnmarshalJSON accepts a bare string or the object form.
func (r *Rule) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}
	type plain Rule
	return json.Unmarshal(data, (*plain)(r))
}

// Diag carries non-fatal warnings produced while loading or compiling a
// definition.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return d.ws }
func (d *simpleDiag) addf(format string, args ...any) {
	d.ws = append(d.ws, fmt.Sprintf(format, args...))
}

// Load parses a definition from raw bytes, sniffing JSON by the first
// non-space byte and falling back to YAML otherwise.
func Load(data []byte) (Definition, Diag, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return LoadJSON(data)
	}
	return LoadYAML(data)
}

// LoadReader reads the stream to the end and parses it like Load.
func LoadReader(r io.Reader) (Definition, Diag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Definition{}, &simpleDiag{}, fmt.Errorf("formdef: read definition: %w", err)
	}
	return Load(data)
}

// LoadJSON parses a JSON definition.
func LoadJSON(data []byte) (Definition, Diag, error) {
	d := &simpleDiag{}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return Definition{}, d, fmt.Errorf("formdef: invalid JSON: %w", err)
	}
	return def, d, validate(def, d)
}

// LoadYAML parses a YAML definition. Multi-document input is rejected; a
// definition file describes exactly one form.
func LoadYAML(data []byte) (Definition, Diag, error) {
	d := &simpleDiag{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return Definition{}, d, fmt.Errorf("formdef: invalid YAML: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return Definition{}, d, errors.New("formdef: multiple YAML documents in one definition")
	} else if !errors.Is(err, io.EOF) {
		return Definition{}, d, fmt.Errorf("formdef: invalid YAML: %w", err)
	}
	return def, d, validate(def, d)
}

// validate performs the structural checks that do not depend on rule
// compilation: keys present and unique, types known.
func validate(def Definition, d *simpleDiag) error {
	if len(def.Fields) == 0 {
		return errors.New("formdef: definition has no fields")
	}
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if f.Key == "" {
			return errors.New("formdef: field with empty key")
		}
		if seen[f.Key] {
			return fmt.Errorf("formdef: duplicate field key %q", f.Key)
		}
		seen[f.Key] = true
		if _, ok := normalizeType(f.Type); !ok {
			return fmt.Errorf("formdef: field %q: unknown type %q%s", f.Key, f.Type, suggest(f.Type, knownTypes))
		}
	}
	for _, f := range def.Fields {
		for _, dep := range f.DependsOn {
			if !seen[dep] {
				d.addf("field %q depends on %q, which this definition does not declare", f.Key, dep)
			}
		}
	}
	return nil
}

var knownTypes = []string{"string", "int", "integer", "float", "number", "bool", "boolean", "string[]"}

// normalizeType folds aliases; "number" means float.
func normalizeType(t string) (string, bool) {
	switch strings.TrimSpace(t) {
	case "string":
		return "string", true
	case "int", "integer":
		return "int", true
	case "float", "number":
		return "float", true
	case "bool", "boolean":
		return "bool", true
	case "string[]", "strings":
		return "string[]", true
	default:
		return "", false
	}
}
