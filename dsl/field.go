package dsl

import (
	"context"
	"time"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/rules"
)

// FieldBuilder accumulates one field's config. Builders are single-use: build
// the config with Config or Any once chaining is done.
type FieldBuilder[T any] struct {
	cfg       formwork.FieldConfig[T]
	ruleChain []func(T) string
}

// FieldOf starts a builder for a field of any value type.
func FieldOf[T any](key string) *FieldBuilder[T] {
	return &FieldBuilder[T]{cfg: formwork.FieldConfig[T]{ID: formwork.Field[T](key)}}
}

// Text starts a string field builder.
func Text(key string) *FieldBuilder[string] { return FieldOf[string](key) }

// Int starts an int field builder.
func Int(key string) *FieldBuilder[int] { return FieldOf[int](key) }

// Number starts a float64 field builder.
func Number(key string) *FieldBuilder[float64] { return FieldOf[float64](key) }

// Bool starts a bool field builder.
func Bool(key string) *FieldBuilder[bool] { return FieldOf[bool](key) }

// Time starts a time.Time field builder; pair it with codec.TimeRFC3339 for
// text-based editing.
func Time(key string) *FieldBuilder[time.Time] { return FieldOf[time.Time](key) }

// SliceOf starts a builder for an array field holding []T.
func SliceOf[T any](key string) *FieldBuilder[[]T] {
	return &FieldBuilder[[]T]{cfg: formwork.FieldConfig[[]T]{ID: formwork.Array[T](key).AsField()}}
}

// ID returns the typed handle of the field under construction.
func (b *FieldBuilder[T]) ID() formwork.FieldID[T] { return b.cfg.ID }

// Initial sets the initial value.
func (b *FieldBuilder[T]) Initial(v T) *FieldBuilder[T] {
	b.cfg.Initial = v
	return b
}

// Required appends the standard required rule.
func (b *FieldBuilder[T]) Required() *FieldBuilder[T] {
	b.ruleChain = append(b.ruleChain, rules.Required[T]())
	return b
}

// Rule appends sync validators, run in order with the first failure winning.
func (b *FieldBuilder[T]) Rule(fns ...func(T) string) *FieldBuilder[T] {
	b.ruleChain = append(b.ruleChain, fns...)
	return b
}

// Cross sets the cross-field validator.
func (b *FieldBuilder[T]) Cross(fn func(T, formwork.FormState) string) *FieldBuilder[T] {
	b.cfg.ValidateCross = fn
	return b
}

// Async sets the async validator.
func (b *FieldBuilder[T]) Async(fn func(context.Context, T) (string, error)) *FieldBuilder[T] {
	b.cfg.ValidateAsync = fn
	return b
}

// Debounce overrides the async debounce window.
func (b *FieldBuilder[T]) Debounce(d time.Duration) *FieldBuilder[T] {
	b.cfg.Debounce = d
	return b
}

// DependsOn declares the fields whose changes re-validate this one.
func (b *FieldBuilder[T]) DependsOn(ids ...formwork.Keyer) *FieldBuilder[T] {
	b.cfg.DependsOn = append(b.cfg.DependsOn, formwork.KeysOf(ids...)...)
	return b
}

// Derive sets the derived-value callback.
func (b *FieldBuilder[T]) Derive(fn func(formwork.FormState) (T, error)) *FieldBuilder[T] {
	b.cfg.Derive = fn
	return b
}

// Transform sets the input normalization callback.
func (b *FieldBuilder[T]) Transform(fn func(T) T) *FieldBuilder[T] {
	b.cfg.Transform = fn
	return b
}

// VisibleWhen sets the visibility predicate.
func (b *FieldBuilder[T]) VisibleWhen(fn func(formwork.FormState) bool) *FieldBuilder[T] {
	b.cfg.VisibleWhen = fn
	return b
}

// EnabledWhen sets the enabled predicate.
func (b *FieldBuilder[T]) EnabledWhen(fn func(formwork.FormState) bool) *FieldBuilder[T] {
	b.cfg.EnabledWhen = fn
	return b
}

// Policy sets the re-registration policy.
func (b *FieldBuilder[T]) Policy(p formwork.RegisterPolicy) *FieldBuilder[T] {
	b.cfg.Policy = p
	return b
}

// Config finalizes the typed config.
func (b *FieldBuilder[T]) Config() formwork.FieldConfig[T] {
	cfg := b.cfg
	switch len(b.ruleChain) {
	case 0:
	case 1:
		cfg.Validate = b.ruleChain[0]
	default:
		cfg.Validate = rules.Compose(b.ruleChain...)
	}
	return cfg
}

// Any finalizes the config in type-erased form for Form/Register.
func (b *FieldBuilder[T]) Any() formwork.AnyFieldConfig { return b.Config().Any() }
