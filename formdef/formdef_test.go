package formdef_test

import (
	"strings"
	"testing"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/formdef"
)

const signupYAML = `
name: signup
title: Sign up
fields:
  - key: email
    type: string
    rules:
      - required
      - email
  - key: age
    type: int
    initial: 18
    rules:
      - name: min
        param: 18
  - key: tags
    type: string[]
    rules:
      - name: maxItems
        param: 3
  - key: plan
    type: string
    initial: free
    rules:
      - name: oneOf
        param: [free, pro]
`

// TestLoadYAML_RegisterAndValidate drives a full YAML-to-controller round
// trip: load, register, mutate, validate.
func TestLoadYAML_RegisterAndValidate(t *testing.T) {
	def, diag, err := formdef.Load([]byte(signupYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diag.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", diag.Warnings())
	}
	if def.Name != "signup" || len(def.Fields) != 4 {
		t.Fatalf("unexpected definition: %+v", def)
	}

	c := formwork.New()
	if _, err := def.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.State()
	if s.IsValid() {
		t.Fatalf("expected the empty email to fail required")
	}
	if !s.Validation("age").Valid {
		t.Fatalf("expected the initial age to pass, got %+v", s.Validation("age"))
	}
	if err := c.SetAny("email", "user@example.com"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if err := c.SetAny("plan", "enterprise"); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	s = c.State()
	if s.Validation("plan").Valid {
		t.Fatalf("expected an enum failure for plan")
	}
	if err := c.SetAny("plan", "pro"); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	if s = c.State(); !s.IsValid() {
		t.Fatalf("expected a valid form, got %v", s.ErrorMessages())
	}
}

// TestLoadJSON_ShorthandRules checks the bare-string rule form in JSON.
func TestLoadJSON_ShorthandRules(t *testing.T) {
	data := []byte(`{
		"name": "contact",
		"fields": [
			{"key": "name", "type": "string", "rules": ["required", {"name": "minLength", "param": 2}]}
		]
	}`)
	def, _, err := formdef.Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(def.Fields[0].Rules) != 2 || def.Fields[0].Rules[0].Name != "required" {
		t.Fatalf("unexpected rules: %+v", def.Fields[0].Rules)
	}
	cfgs, _, err := def.Configs()
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if len(cfgs) != 1 || cfgs[0].Key != "name" {
		t.Fatalf("unexpected configs: %+v", cfgs)
	}
}

// TestUnknownRule_SuggestsClosest checks the typo hint.
func TestUnknownRule_SuggestsClosest(t *testing.T) {
	def, _, err := formdef.Load([]byte(`
name: f
fields:
  - key: email
    type: string
    rules:
      - requierd
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, _, err = def.Configs()
	if err == nil {
		t.Fatalf("expected an unknown-rule error")
	}
	if !strings.Contains(err.Error(), `did you mean "required"?`) {
		t.Fatalf("expected a suggestion, got %v", err)
	}
}

// TestUnknownType_SuggestsClosest checks the type typo hint at load time.
func TestUnknownType_SuggestsClosest(t *testing.T) {
	_, _, err := formdef.Load([]byte(`
name: f
fields:
  - key: age
    type: integre
`))
	if err == nil {
		t.Fatalf("expected an unknown-type error")
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected a suggestion, got %v", err)
	}
}

// TestRuleTypeMismatch rejects rules that do not apply to the field type.
func TestRuleTypeMismatch(t *testing.T) {
	def, _, err := formdef.Load([]byte(`
name: f
fields:
  - key: age
    type: int
    rules:
      - name: minLength
        param: 2
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, _, err = def.Configs()
	if err == nil || !strings.Contains(err.Error(), "does not apply") {
		t.Fatalf("expected a mismatch error, got %v", err)
	}
}

// TestUndeclaredDependency_Warns keeps cross-definition deps possible while
// flagging likely mistakes.
func TestUndeclaredDependency_Warns(t *testing.T) {
	_, diag, err := formdef.Load([]byte(`
name: f
fields:
  - key: city
    type: string
    dependsOn: [country]
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !diag.HasWarnings() {
		t.Fatalf("expected a warning about the undeclared dependency")
	}
}

func TestJSONSchemaExport(t *testing.T) {
	def, _, err := formdef.Load([]byte(signupYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := def.JSONSchema()
	if s.Type != "object" || s.Title != "Sign up" {
		t.Fatalf("unexpected root: %+v", s)
	}
	email := s.Properties["email"]
	if email == nil || email.Type != "string" || email.Format != "email" {
		t.Fatalf("unexpected email schema: %+v", email)
	}
	if len(s.Required) != 1 || s.Required[0] != "email" {
		t.Fatalf("unexpected required list: %v", s.Required)
	}
	age := s.Properties["age"]
	if age == nil || age.Type != "integer" || age.Minimum == nil || *age.Minimum != 18 {
		t.Fatalf("unexpected age schema: %+v", age)
	}
	tags := s.Properties["tags"]
	if tags == nil || tags.Type != "array" || tags.MaxItems == nil || *tags.MaxItems != 3 {
		t.Fatalf("unexpected tags schema: %+v", tags)
	}
	plan := s.Properties["plan"]
	if plan == nil || len(plan.Enum) != 2 {
		t.Fatalf("unexpected plan schema: %+v", plan)
	}
}
