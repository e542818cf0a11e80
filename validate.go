package formwork

import (
	"context"
	"fmt"
)

// Validate synchronously re-runs every field's sync and cross validators, in
// registration order against the same working snapshot, and reports whether
// the form has no errors afterwards. It is a superset of marking all fields
// touched. Fields with an async run in flight keep their pending verdict
// unless the sync pass finds them invalid, in which case the sync failure
// settles them immediately; a settled async failure is preserved, since the
// sync rules cannot re-derive it. Manual errors set via SetError are
// overwritten. Validate pushes no history entry.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	if c.disposed {
		valid := c.state.ErrorCount() == 0
		c.mu.Unlock()
		return valid
	}
	next := c.state.clone()
	for _, key := range c.reg.keys() {
		e, _ := c.reg.get(key)
		msg := c.ownSyncMessage(e, key, next.values[key], next)
		switch {
		case e.async != nil && e.async.pending && msg == "":
			next.validations[key] = Pending()
		case e.async != nil && e.async.pending:
			next.validations[key] = Invalid(msg)
			c.settleAsyncLocked(e, false)
		case e.async != nil && msg == "":
			// Settled async verdicts survive the sync-only pass.
			next.validations[key] = resultOf(e.async.settled)
		default:
			next.validations[key] = resultOf(msg)
		}
		next.flags[key] |= flagTouched
	}
	next.pending = c.pendingCount
	valid := next.ErrorCount() == 0
	n := c.commitLocked(next, nil, histNone)
	c.mu.Unlock()
	n.fire()
	return valid
}

// Reset restores every field to its initial value, clears all dirty and
// touched flags, invalidates in-flight async runs and re-seeds sync
// validations against the restored state. The whole reset commits as one
// mutation with a single history entry and a single emission; afterwards the
// form is not dirty and no field is touched.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	next := c.state.clone()
	var changed []string
	for _, key := range c.reg.keys() {
		e, _ := c.reg.get(key)
		// Values move back to their initials, so any async verdict or
		// in-flight run is for a value that no longer exists.
		c.settleAsyncLocked(e, true)
		if !valueEqual(next.values[key], e.cfg.Initial) {
			changed = append(changed, key)
		}
		next.values[key] = e.cfg.Initial
		delete(next.flags, key)
	}
	for _, key := range c.reg.keys() {
		e, _ := c.reg.get(key)
		next.validations[key] = resultOf(c.ownSyncMessage(e, key, next.values[key], next))
	}
	next.pending = c.pendingCount
	n := c.commitLocked(next, changed, histPush)
	c.mu.Unlock()
	n.fire()
	return nil
}

// ResetField restores one field to its initial value, clears its flags and
// re-seeds its sync validation, then re-validates its dependents the same way
// a value mutation would. One history entry, one emission.
func (c *Controller) ResetField(key string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	e, ok := c.reg.get(key)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrFieldNotRegistered, key)
	}
	next := c.state.clone()
	valueChanged := !valueEqual(next.values[key], e.cfg.Initial)
	next.values[key] = e.cfg.Initial
	delete(next.flags, key)
	c.settleAsyncLocked(e, valueChanged)
	next.validations[key] = resultOf(c.ownSyncMessage(e, key, next.values[key], next))
	changed := []string{key}
	if valueChanged {
		for _, dep := range c.graph.Dependents(key) {
			c.revalidateDependentLocked(dep, &next, &changed)
		}
	}
	next.pending = c.pendingCount
	n := c.commitLocked(next, changed, histPush)
	c.mu.Unlock()
	n.fire()
	return nil
}

// Submit drives a submission: it flips the submitting flag, blocks until no
// async validation is in flight, runs a full Validate pass, and dispatches to
// exactly one of the callbacks. onValid receives the values as a nested map
// (keys split on dots); its error becomes Submit's return. onError receives
// the flat key-to-message error map. Either callback may be nil.
//
// The submitting flag is cleared on every exit path, including context
// cancellation and panicking callbacks; a panic is converted to an error.
// Submissions do not overlap: a second Submit while one is running fails with
// ErrSubmitInProgress.
func (c *Controller) Submit(ctx context.Context, onValid func(map[string]any) error, onError func(map[string]string)) (err error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	if c.submitActive {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.submitActive = true
	begin := c.state.clone()
	begin.submitting = true
	n := c.commitLocked(begin, nil, histNone)
	c.mu.Unlock()
	n.fire()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("formwork: submit callback panicked: %v", r)
		}
		c.mu.Lock()
		c.submitActive = false
		end := c.state.clone()
		end.submitting = false
		end.pending = c.pendingCount
		n := c.commitLocked(end, nil, histNone)
		c.mu.Unlock()
		n.fire()
	}()

	var valid bool
	for {
		if err := c.WaitIdle(ctx); err != nil {
			return err
		}
		valid = c.Validate()
		// A mutation racing with the validate pass may have scheduled new
		// async work; a submission decides only on a fully settled form.
		c.mu.Lock()
		idle := c.pendingCount == 0
		c.mu.Unlock()
		if idle {
			break
		}
	}

	s := c.State()
	if valid {
		if onValid != nil {
			return onValid(s.Nested())
		}
		return nil
	}
	if onError != nil {
		onError(s.ErrorMessages())
	}
	return nil
}
