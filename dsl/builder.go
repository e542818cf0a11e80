package dsl

import (
	formwork "github.com/quharo/formwork"
)

// FormBuilder collects field configs for batch registration.
type FormBuilder struct {
	cfgs []formwork.AnyFieldConfig
}

// Form creates an empty form builder.
func Form() *FormBuilder { return &FormBuilder{} }

// Add appends configs as-is.
func (f *FormBuilder) Add(cfgs ...formwork.AnyFieldConfig) *FormBuilder {
	f.cfgs = append(f.cfgs, cfgs...)
	return f
}

// Group appends configs rebased under "prefix.". Dependency keys that address
// other members of the same batch are rewritten along with the field keys;
// dependencies on fields outside the batch keep their absolute keys.
func (f *FormBuilder) Group(prefix string, cfgs ...formwork.AnyFieldConfig) *FormBuilder {
	sameGroup := make(map[string]bool, len(cfgs))
	for _, cfg := range cfgs {
		sameGroup[cfg.Key] = true
	}
	for _, cfg := range cfgs {
		f.cfgs = append(f.cfgs, cfg.WithPrefix(prefix, sameGroup))
	}
	return f
}

// Configs returns the collected configs in declaration order.
func (f *FormBuilder) Configs() []formwork.AnyFieldConfig { return f.cfgs }

// Apply registers the collected configs on the controller as one batch.
func (f *FormBuilder) Apply(c *formwork.Controller) error {
	return c.Register(f.cfgs...)
}

// MustApply is Apply panicking on error, for wiring done at startup.
func (f *FormBuilder) MustApply(c *formwork.Controller) {
	if err := f.Apply(c); err != nil {
		panic("dsl.MustApply: " + err.Error())
	}
}
