package formwork

import (
	"math"
	"slices"
)

// RegisterField registers a single typed field. See Controller.Register.
func RegisterField[T any](c *Controller, fc FieldConfig[T]) error {
	return c.Register(fc.Any())
}

// Register adds fields to the form, or replaces their configs when the keys
// are already registered. Registration seeds each field's sync validation
// immediately, so a required field with an empty initial value makes the form
// invalid from the start. Async validators are not scheduled at registration.
//
// Re-registration keeps the key's registration rank and interaction flags and
// resolves the stored value per the config's RegisterPolicy; an in-flight
// async run for the key is invalidated. Registration rewrites the current
// history entry in place rather than pushing an undoable step.
func (c *Controller) Register(cfgs ...AnyFieldConfig) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	for _, cfg := range cfgs {
		if cfg.Key == "" {
			c.mu.Unlock()
			return ErrEmptyFieldKey
		}
	}

	next := c.state.clone()
	var roots, changed []string
	for _, cfg := range cfgs {
		key := cfg.Key
		e, existed := c.reg.put(cfg)
		value := cfg.Initial
		if existed {
			switch cfg.Policy {
			case PolicyKeepExisting:
				value = next.values[key]
			case PolicyPreferIncoming:
				// value stays cfg.Initial
			default: // PolicyMergeNonNil
				if stored := next.values[key]; stored != nil {
					value = stored
				}
			}
			// The replaced config brings its own validators; neither an
			// in-flight run nor a settled verdict of the old ones applies.
			c.settleAsyncLocked(e, true)
		}
		if !valueEqual(next.values[key], value) {
			changed = append(changed, key)
		}
		next.values[key] = value
		c.updateDirtyLocked(&next, e, key, value)
		roots = append(roots, key)
	}
	// Seed sync validations once all values of this batch are in place, so
	// cross validators between batch members see each other.
	for _, key := range roots {
		e, _ := c.reg.get(key)
		next.validations[key] = resultOf(c.ownSyncMessage(e, key, next.values[key], next))
	}
	// Fields elsewhere in the form may depend on the keys just (re)registered.
	for _, dep := range c.graph.Dependents(roots...) {
		c.revalidateDependentLocked(dep, &next, &changed)
	}
	for _, cfg := range cfgs {
		c.graph.Add(cfg.Key, cfg.DependsOn)
	}
	next.order = slices.Clone(c.reg.keys())
	next.pending = c.pendingCount
	n := c.commitLocked(next, changed, histReplace)
	c.mu.Unlock()
	n.fire()
	return nil
}

// Unregister removes fields entirely: configs, stored values, validations and
// flags. In-flight async runs for the keys are invalidated. Like Register it
// rewrites the current history entry instead of pushing one.
func (c *Controller) Unregister(keys ...string) error {
	return c.unregister(keys, false)
}

// UnregisterPreserving removes the fields' configs but keeps their stored
// values and interaction flags, for forms whose sections register and
// unregister as the user moves between steps. Validations are dropped with
// the config; re-registering the key re-seeds them, and a policy of
// PolicyMergeNonNil (the default) restores the preserved value.
func (c *Controller) UnregisterPreserving(keys ...string) error {
	return c.unregister(keys, true)
}

func (c *Controller) unregister(keys []string, preserve bool) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	next := c.state.clone()
	removed := false
	for _, key := range keys {
		e, ok := c.reg.get(key)
		if !ok {
			continue
		}
		removed = true
		if e.async != nil && e.async.pending {
			c.settleAsyncLocked(e, true)
		}
		c.graph.Remove(key)
		c.reg.remove(key)
		delete(next.validations, key)
		if !preserve {
			delete(next.values, key)
			delete(next.flags, key)
		}
	}
	if !removed {
		c.mu.Unlock()
		return nil
	}
	next.order = slices.Clone(c.reg.keys())
	next.pending = c.pendingCount
	n := c.commitLocked(next, nil, histReplace)
	c.mu.Unlock()
	n.fire()
	return nil
}

// Registered reports whether the key currently has an active registration.
func (c *Controller) Registered(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.reg.get(key)
	return ok
}

// Keys returns the registered field keys in registration order.
func (c *Controller) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.reg.keys())
}

// Config returns the stored registration config for a key.
func (c *Controller) Config(key string) (AnyFieldConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.reg.get(key)
	if !ok {
		return AnyFieldConfig{}, false
	}
	return e.cfg, ok
}

// CoerceValue bends a JSON-decoded value toward the dynamic type the field
// carries, witnessed by the current stored value or, when that is nil, the
// registered initial: integral float64s become int for int fields, ints
// widen to float64, []any of strings becomes []string. Anything else,
// including unregistered keys, passes through unchanged. Draft restore,
// patch import and the HTTP middleware run incoming documents through this
// before committing, since JSON carries only one number shape.
func (c *Controller) CoerceValue(key string, v any) any {
	c.mu.Lock()
	witness := c.state.values[key]
	if witness == nil {
		if e, ok := c.reg.get(key); ok {
			witness = e.cfg.Initial
		}
	}
	c.mu.Unlock()
	return coerceToWitness(witness, v)
}

func coerceToWitness(witness, v any) any {
	switch witness.(type) {
	case int:
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			return int(f)
		}
	case float64:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	case []string:
		if arr, ok := v.([]any); ok {
			out := make([]string, 0, len(arr))
			for _, e := range arr {
				s, ok := e.(string)
				if !ok {
					return v
				}
				out = append(out, s)
			}
			return out
		}
	}
	return v
}
