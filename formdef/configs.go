package formdef

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/rules"
)

var knownRules = []string{
	"required", "minLength", "maxLength", "min", "max",
	"pattern", "email", "oneOf", "minItems", "maxItems",
}

// Configs compiles the definition into registrable field configs, in
// declaration order. Unknown rule names and rule/type mismatches are
// configuration errors; where a name is close to a known rule the error
// suggests it.
func (def Definition) Configs() ([]formwork.AnyFieldConfig, Diag, error) {
	d := &simpleDiag{}
	out := make([]formwork.AnyFieldConfig, 0, len(def.Fields))
	for _, f := range def.Fields {
		cfg, err := compileField(f)
		if err != nil {
			return nil, d, err
		}
		out = append(out, cfg)
	}
	return out, d, nil
}

// Register compiles the definition and registers the whole batch on the
// controller.
func (def Definition) Register(c *formwork.Controller) (Diag, error) {
	cfgs, d, err := def.Configs()
	if err != nil {
		return d, err
	}
	return d, c.Register(cfgs...)
}

func compileField(f Field) (formwork.AnyFieldConfig, error) {
	t, _ := normalizeType(f.Type)
	var (
		cfg formwork.AnyFieldConfig
		err error
	)
	switch t {
	case "string":
		cfg, err = compileString(f)
	case "int":
		cfg, err = compileInt(f)
	case "float":
		cfg, err = compileFloat(f)
	case "bool":
		cfg, err = compileBool(f)
	case "string[]":
		cfg, err = compileStrings(f)
	}
	if err != nil {
		return formwork.AnyFieldConfig{}, err
	}
	cfg.DependsOn = f.DependsOn
	return cfg, nil
}

func compileString(f Field) (formwork.AnyFieldConfig, error) {
	initial, _ := toString(f.Initial)
	var chain []func(string) string
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			chain = append(chain, rules.Required[string]())
		case "minLength":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.MinLength(n))
		case "maxLength":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.MaxLength(n))
		case "pattern":
			expr, ok := toString(r.Param)
			if !ok || expr == "" {
				return formwork.AnyFieldConfig{}, paramErr(f, r, "a pattern string")
			}
			chain = append(chain, rules.Pattern(expr))
		case "email":
			chain = append(chain, rules.Email())
		case "oneOf":
			allowed, ok := toStrings(r.Param)
			if !ok || len(allowed) == 0 {
				return formwork.AnyFieldConfig{}, paramErr(f, r, "a list of strings")
			}
			chain = append(chain, rules.OneOf(allowed...))
		default:
			return formwork.AnyFieldConfig{}, ruleErr(f, r)
		}
	}
	return formwork.FieldConfig[string]{
		ID:       formwork.Field[string](f.Key),
		Initial:  initial,
		Validate: composeOrNil(chain),
	}.Any(), nil
}

func compileInt(f Field) (formwork.AnyFieldConfig, error) {
	initial, _ := toInt(f.Initial)
	var chain []func(int) string
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			chain = append(chain, rules.Required[int]())
		case "min":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.Min(n))
		case "max":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.Max(n))
		default:
			return formwork.AnyFieldConfig{}, ruleErr(f, r)
		}
	}
	return formwork.FieldConfig[int]{
		ID:       formwork.Field[int](f.Key),
		Initial:  initial,
		Validate: composeOrNil(chain),
	}.Any(), nil
}

func compileFloat(f Field) (formwork.AnyFieldConfig, error) {
	initial, _ := toFloat(f.Initial)
	var chain []func(float64) string
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			chain = append(chain, rules.Required[float64]())
		case "min":
			x, err := floatParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.Min(x))
		case "max":
			x, err := floatParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.Max(x))
		default:
			return formwork.AnyFieldConfig{}, ruleErr(f, r)
		}
	}
	return formwork.FieldConfig[float64]{
		ID:       formwork.Field[float64](f.Key),
		Initial:  initial,
		Validate: composeOrNil(chain),
	}.Any(), nil
}

func compileBool(f Field) (formwork.AnyFieldConfig, error) {
	initial, _ := toBool(f.Initial)
	var chain []func(bool) string
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			chain = append(chain, rules.Required[bool]())
		default:
			return formwork.AnyFieldConfig{}, ruleErr(f, r)
		}
	}
	return formwork.FieldConfig[bool]{
		ID:       formwork.Field[bool](f.Key),
		Initial:  initial,
		Validate: composeOrNil(chain),
	}.Any(), nil
}

func compileStrings(f Field) (formwork.AnyFieldConfig, error) {
	initial, _ := toStrings(f.Initial)
	var chain []func([]string) string
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			chain = append(chain, rules.Required[[]string]())
		case "minItems":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.MinItems[string](n))
		case "maxItems":
			n, err := intParam(f, r)
			if err != nil {
				return formwork.AnyFieldConfig{}, err
			}
			chain = append(chain, rules.MaxItems[string](n))
		default:
			return formwork.AnyFieldConfig{}, ruleErr(f, r)
		}
	}
	return formwork.FieldConfig[[]string]{
		ID:       formwork.Array[string](f.Key).AsField(),
		Initial:  initial,
		Validate: composeOrNil(chain),
	}.Any(), nil
}

func composeOrNil[T any](chain []func(T) string) func(T) string {
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return rules.Compose(chain...)
	}
}

// ---- errors and suggestions ----

func ruleErr(f Field, r Rule) error {
	for _, known := range knownRules {
		if known == r.Name {
			return fmt.Errorf("formdef: field %q: rule %q does not apply to type %q", f.Key, r.Name, f.Type)
		}
	}
	return fmt.Errorf("formdef: field %q: unknown rule %q%s", f.Key, r.Name, suggest(r.Name, knownRules))
}

func paramErr(f Field, r Rule, want string) error {
	return fmt.Errorf("formdef: field %q: rule %q needs %s, got %v", f.Key, r.Name, want, r.Param)
}

// suggest returns a " (did you mean ...)" hint when a candidate is within
// edit distance 3, preferring the closest.
func suggest(name string, candidates []string) string {
	best, bestDist := "", 4
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

// ---- value coercion ----
// YAML decodes numbers as int/float64, JSON as float64; initial values and
// rule params tolerate both.

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	default:
		return nil, false
	}
}

func intParam(f Field, r Rule) (int, error) {
	n, ok := toInt(r.Param)
	if !ok {
		return 0, paramErr(f, r, "an integer")
	}
	return n, nil
}

func floatParam(f Field, r Rule) (float64, error) {
	x, ok := toFloat(r.Param)
	if !ok {
		return 0, paramErr(f, r, "a number")
	}
	return x, nil
}
