package formwork

import (
	"context"
	"time"
)

// NoDebounce disables the debounce window for an async validator. The zero
// Debounce value means "use DefaultDebounce"; an explicit negative duration
// schedules the validator immediately.
const NoDebounce = time.Duration(-1)

// DefaultDebounce is applied to async validators whose config leaves Debounce
// at zero.
const DefaultDebounce = 300 * time.Millisecond

// RegisterPolicy decides what happens to an already-stored value when a field
// is re-registered under the same key with a new config.
type RegisterPolicy int

const (
	// PolicyMergeNonNil keeps the existing value when it is non-nil and adopts
	// the incoming initial otherwise. Default.
	PolicyMergeNonNil RegisterPolicy = iota
	// PolicyKeepExisting always keeps the stored value, even a nil one.
	PolicyKeepExisting
	// PolicyPreferIncoming always adopts the incoming initial value.
	PolicyPreferIncoming
)

// FieldConfig is the registration-time descriptor of a single typed field.
// It is immutable once registered; re-registering the same key replaces the
// whole config (value retention governed by Policy).
//
// Validator contract: validators return "" for a passing value and a
// user-facing message otherwise; they never return Go errors. ValidateAsync
// may additionally fail with an infrastructure error, which the engine maps
// to a CodeAsyncFailed message and routes to the diagnostic hook.
type FieldConfig[T any] struct {
	ID      FieldID[T]
	Initial T

	// Validate checks the field's own value.
	Validate func(T) string
	// ValidateCross checks the value against the rest of the form. During a
	// mutation it observes the snapshot after this field's value committed
	// but before dependents re-validated.
	ValidateCross func(T, FormState) string
	// ValidateAsync runs off the mutation path, debounced, with stale results
	// discarded by sequence token.
	ValidateAsync func(context.Context, T) (string, error)

	// Derive recomputes the field's value from the form whenever one of
	// DependsOn changes. Errors and panics leave the value unchanged.
	Derive func(FormState) (T, error)
	// Transform normalizes an incoming value before storage (trim, clamp).
	// Panics leave the raw value in effect.
	Transform func(T) T

	// DependsOn lists keys whose changes re-validate (and re-derive) this
	// field.
	DependsOn []string
	// Debounce delays the async validator; zero means DefaultDebounce,
	// NoDebounce disables the window.
	Debounce time.Duration

	// VisibleWhen and EnabledWhen are presentation predicates evaluated
	// against the current snapshot; they do not affect validation.
	VisibleWhen func(FormState) bool
	EnabledWhen func(FormState) bool

	Policy RegisterPolicy
}

// Any erases the config for registry storage. The wrappers restore the
// concrete type with a checked cast; a stored value of an unexpected dynamic
// type validates as the zero value rather than panicking.
func (fc FieldConfig[T]) Any() AnyFieldConfig {
	a := AnyFieldConfig{
		Key:       fc.ID.Key(),
		Initial:   fc.Initial,
		DependsOn: fc.DependsOn,
		Debounce:  fc.Debounce,
		Policy:    fc.Policy,
	}
	if fc.Validate != nil {
		v := fc.Validate
		a.Validate = func(raw any) string {
			t, _ := asType[T](raw)
			return v(t)
		}
	}
	if fc.ValidateCross != nil {
		v := fc.ValidateCross
		a.ValidateCross = func(raw any, s FormState) string {
			t, _ := asType[T](raw)
			return v(t, s)
		}
	}
	if fc.ValidateAsync != nil {
		v := fc.ValidateAsync
		a.ValidateAsync = func(ctx context.Context, raw any) (string, error) {
			t, _ := asType[T](raw)
			return v(ctx, t)
		}
	}
	if fc.Derive != nil {
		d := fc.Derive
		a.Derive = func(s FormState) (any, error) { return d(s) }
	}
	if fc.Transform != nil {
		tr := fc.Transform
		a.Transform = func(raw any) any {
			t, ok := asType[T](raw)
			if !ok {
				return raw
			}
			return tr(t)
		}
	}
	a.VisibleWhen = fc.VisibleWhen
	a.EnabledWhen = fc.EnabledWhen
	return a
}

// AnyFieldConfig is the type-erased registration descriptor consumed by the
// registry. The dsl package and typed FieldConfig.Any produce it; the
// declarative definition loader builds it directly.
type AnyFieldConfig struct {
	Key     string
	Initial any

	Validate      func(any) string
	ValidateCross func(any, FormState) string
	ValidateAsync func(context.Context, any) (string, error)
	Derive        func(FormState) (any, error)
	Transform     func(any) any

	DependsOn []string
	Debounce  time.Duration

	VisibleWhen func(FormState) bool
	EnabledWhen func(FormState) bool

	Policy RegisterPolicy
}

// WithPrefix returns a copy of the config with the key moved under the given
// group prefix. Dependency keys contained in sameGroup are rewritten too;
// keys outside the set are assumed to address fields beyond the group and are
// left alone.
func (a AnyFieldConfig) WithPrefix(prefix string, sameGroup map[string]bool) AnyFieldConfig {
	if prefix == "" {
		return a
	}
	out := a
	out.Key = prefix + "." + a.Key
	if len(a.DependsOn) > 0 {
		deps := make([]string, len(a.DependsOn))
		for i, d := range a.DependsOn {
			if sameGroup[d] {
				deps[i] = prefix + "." + d
			} else {
				deps[i] = d
			}
		}
		out.DependsOn = deps
	}
	return out
}

// debounceWindow resolves the configured debounce to a concrete duration.
func (a AnyFieldConfig) debounceWindow() time.Duration {
	switch {
	case a.Debounce < 0:
		return 0
	case a.Debounce == 0:
		return DefaultDebounce
	default:
		return a.Debounce
	}
}
