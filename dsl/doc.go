// Package dsl provides a fluent builder for formwork field configs.
//
// Overview
//   - Field builders: FieldOf[T](key) plus the Text/Int/Number/Bool/Time/
//     SliceOf shorthands produce one FieldConfig each, chaining Initial/
//     Required/Rule/Cross/Async/Derive and the rest of the config surface.
//   - Form assembly: Form().Add(...).Group(prefix, ...) collects configs;
//     Apply registers the whole batch on a controller in one call.
//   - Groups: Group moves a batch under "prefix." and rewrites dependency
//     keys that point inside the same batch, so a step's fields can be
//     declared without knowing their final prefix.
//
// Entry points
//   - FieldOf[T](key): generic builder for any value type.
//   - Text/Int/Number/Bool/Time(key): common scalar shorthands.
//   - SliceOf[T](key): builder for array fields ([]T values).
//   - Form(): batch collector; chain Add/Group, finish with Apply/MustApply.
//
// Design guidelines
//   - Builders only assemble configs; all semantics live in the controller.
//   - Validation sugar delegates to the rules package rather than duplicating
//     message wording here.
package dsl
