package formwork

// Package formwork provides:
//
// - A reactive form state engine: typed field handles, sync/cross/async
//   validation, dependency propagation, undo/redo and one-way bindings
// - Immutable FormState snapshots with dirty/touched tracking, group
//   aggregates and nested-map export
// - A debounced async validation model with sequence-token staleness, a
//   pending count invariant and WaitIdle for deterministic settling
// - Submission orchestration that blocks on in-flight validation and
//   dispatches to exactly one of onValid/onError
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the builder DSL under dsl/, value codecs under codec/, reusable rules under rules/,
//   and the CLI under cmd/formwork.
// - Validation failures are user-facing messages, never Go errors; errors cover API misuse
//   and infrastructure only.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	name := formwork.Field[string]("name")
//	c := formwork.New()
//	_ = formwork.RegisterField(c, formwork.FieldConfig[string]{
//		ID:       name,
//		Validate: rules.Required[string](),
//	})
//	_ = formwork.Set(c, name, "John")
//	if c.Validate() {
//		_ = c.Submit(ctx, onValid, onError)
//	}
