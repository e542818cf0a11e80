package formwork

// binding records one active one-way link held by the target controller.
type binding struct {
	targetKey    string
	cancelSource func()
}

// Bind establishes a one-way link: whenever the source field's value changes
// in the source controller, the value is written to the target field on this
// controller through the regular mutation pipeline (so target-side
// validation, propagation and the value-equality no-op all apply). The
// current source value is not pushed at bind time; only subsequent changes
// flow.
//
// The returned cancel severs the link and is idempotent. Disposing either
// controller also tears the link down.
func (c *Controller) Bind(target Keyer, source *Controller, sourceField Keyer) (cancel func(), err error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if source.Disposed() {
		return nil, ErrSourceDisposed
	}
	targetKey := target.Key()
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrControllerDisposed
	}
	if _, ok := c.reg.get(targetKey); !ok {
		c.mu.Unlock()
		return nil, ErrFieldNotRegistered
	}
	c.mu.Unlock()

	// Subscribe without holding our lock: the source takes its own lock, and
	// two controllers bound to each other must not lock in opposite orders.
	cancelSrc := source.WatchValue(sourceField.Key(), func(v any) {
		_ = c.SetAny(targetKey, v)
	})

	b := &binding{targetKey: targetKey, cancelSource: cancelSrc}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		cancelSrc()
		return nil, ErrControllerDisposed
	}
	c.bindings = append(c.bindings, b)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		for i, existing := range c.bindings {
			if existing == b {
				c.bindings = append(c.bindings[:i:i], c.bindings[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		b.cancelSource()
	}, nil
}

// ActiveBindings reports how many links currently target this controller.
func (c *Controller) ActiveBindings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bindings)
}
