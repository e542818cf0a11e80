package formwork

import (
	"fmt"
	"sync"

	"github.com/quharo/formwork/internal/graph"
)

// Controller is the mutable core of a form. It owns the field registry, the
// dependency graph, the undo/redo history and the async coordinator state,
// and exposes the whole mutation API. Every mutation commits a fresh
// immutable FormState and notifies observers after the commit, never in the
// middle of a propagation pass.
//
// All methods are safe for concurrent use; a single mutex serializes
// mutations, which is the concurrent-Go rendition of the engine's
// single-logical-thread model. Observer callbacks run outside the lock.
type Controller struct {
	mu           sync.Mutex
	reg          *registry
	graph        *graph.Graph
	state        FormState
	history      *historyRing
	hub          *watchHub
	bindings     []*binding
	pendingCount int
	idleCh       chan struct{}
	disposed     bool
	submitActive bool

	historyLimit   int
	autovalidate   AutovalidateMode
	focusRequester func(key string)
	diagnostic     func(key string, err error)
}

// New constructs an empty controller. Fields are added with Register; the
// initial empty snapshot forms the history baseline.
func New(opts ...Option) *Controller {
	c := &Controller{
		reg:          newRegistry(),
		graph:        graph.New(),
		hub:          newWatchHub(),
		historyLimit: DefaultHistoryCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.history = newHistoryRing(c.historyLimit)
	c.state = FormState{
		values:      make(map[string]any),
		validations: make(map[string]ValidationResult),
		flags:       make(map[string]fieldFlags),
	}
	c.history.push(c.state)
	return c
}

// State returns the current committed snapshot.
func (c *Controller) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Autovalidate returns the controller's display mode for use in
// ShouldShowError calls at the presentation layer.
func (c *Controller) Autovalidate() AutovalidateMode { return c.autovalidate }

// ---- commit machinery ----

type histMode int

const (
	histNone histMode = iota
	histPush
	histReplace
)

// commitLocked publishes the next snapshot, records history per mode, closes
// the idle gate when the pending count reached zero, and captures the
// notification to fire after the lock is released. Caller holds the lock.
func (c *Controller) commitLocked(next FormState, changedKeys []string, hist histMode) *notification {
	c.state = next
	switch hist {
	case histPush:
		c.history.push(next)
	case histReplace:
		c.history.replaceCurrent(next)
	}
	if next.pending == 0 && c.idleCh != nil {
		close(c.idleCh)
		c.idleCh = nil
	}
	return c.hub.prepare(next, changedKeys)
}

func (c *Controller) diagnose(key string, err error) {
	if c.diagnostic != nil && err != nil {
		c.diagnostic(key, err)
	}
}

// ---- value mutation ----

// Set stores a new value for a typed field. See Controller.SetAny for the
// mutation contract.
func Set[T any](c *Controller, id FieldID[T], value T) error {
	return c.SetAny(id.Key(), value)
}

// Get reads the current typed value of a field.
func Get[T any](c *Controller, id FieldID[T]) (T, bool) {
	return ValueOf(c.State(), id)
}

// SetAny stores a new value for the field registered under key. The mutation
// pipeline: transform, no-op check against the stored value, dirty
// recomputation, the field's own sync and cross validators, async scheduling,
// breadth-first dependent re-validation (each dependent exactly once), then a
// single history push and a single emission. Setting the already-stored value
// is a no-op with no emission.
func (c *Controller) SetAny(key string, value any) error {
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
	n := c.applySetLocked(e, key, value)
	c.mu.Unlock()
	n.fire()
	return nil
}

// Patch applies several field updates as one transaction: all values commit
// first, dependents re-validate once against the fully patched state, one
// history entry is pushed and one snapshot emitted. Unknown keys fail the
// whole patch before anything is applied.
func (c *Controller) Patch(values map[string]any) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	for key := range values {
		if _, ok := c.reg.get(key); !ok {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrFieldNotRegistered, key)
		}
	}

	next := c.state.clone()
	var roots, changed []string
	// Apply in registration order so cross validators and propagation see a
	// deterministic sequence regardless of map iteration.
	for _, key := range c.reg.keys() {
		raw, present := values[key]
		if !present {
			continue
		}
		e, _ := c.reg.get(key)
		v := c.transformValue(e, key, raw)
		if valueEqual(next.values[key], v) {
			continue
		}
		next.values[key] = v
		c.updateDirtyLocked(&next, e, key, v)
		roots = append(roots, key)
		changed = append(changed, key)
	}
	if len(roots) == 0 {
		c.mu.Unlock()
		return nil
	}
	for _, key := range roots {
		e, _ := c.reg.get(key)
		c.validateOwnLocked(e, key, &next, true)
	}
	for _, dep := range c.graph.Dependents(roots...) {
		c.revalidateDependentLocked(dep, &next, &changed)
	}
	next.pending = c.pendingCount
	n := c.commitLocked(next, changed, histPush)
	c.mu.Unlock()
	n.fire()
	return nil
}

// applySetLocked runs the full single-field mutation pipeline. Returns the
// notification to fire after unlock; nil for a no-op.
func (c *Controller) applySetLocked(e *fieldEntry, key string, value any) *notification {
	v := c.transformValue(e, key, value)
	if valueEqual(c.state.values[key], v) {
		return nil
	}
	next := c.state.clone()
	next.values[key] = v
	c.updateDirtyLocked(&next, e, key, v)
	changed := []string{key}
	c.validateOwnLocked(e, key, &next, true)
	for _, dep := range c.graph.Dependents(key) {
		c.revalidateDependentLocked(dep, &next, &changed)
	}
	next.pending = c.pendingCount
	return c.commitLocked(next, changed, histPush)
}

// transformValue applies the config's transform, falling back to the raw
// value when the callback panics.
func (c *Controller) transformValue(e *fieldEntry, key string, value any) (out any) {
	if e.cfg.Transform == nil {
		return value
	}
	defer func() {
		if r := recover(); r != nil {
			c.diagnose(key, fmt.Errorf("transform panicked: %v", r))
			out = value
		}
	}()
	return e.cfg.Transform(value)
}

func (c *Controller) updateDirtyLocked(next *FormState, e *fieldEntry, key string, value any) {
	if valueEqual(value, e.cfg.Initial) {
		next.flags[key] &^= flagDirty
	} else {
		next.flags[key] |= flagDirty
	}
	if next.flags[key] == 0 {
		delete(next.flags, key)
	}
}

// ownSyncMessage runs the field's sync then cross validator against the
// working snapshot. Validator panics are isolated: the offending callback
// contributes no verdict and the pipeline continues.
func (c *Controller) ownSyncMessage(e *fieldEntry, key string, value any, s FormState) string {
	if e.cfg.Validate != nil {
		if msg := c.safeValidate(key, func() string { return e.cfg.Validate(value) }); msg != "" {
			return msg
		}
	}
	if e.cfg.ValidateCross != nil {
		if msg := c.safeValidate(key, func() string { return e.cfg.ValidateCross(value, s) }); msg != "" {
			return msg
		}
	}
	return ""
}

func (c *Controller) safeValidate(key string, fn func() string) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			c.diagnose(key, fmt.Errorf("validator panicked: %v", r))
			msg = ""
		}
	}()
	return fn()
}

// validateOwnLocked computes and stores the field's validation after its own
// value changed. valueChanged distinguishes a real mutation (in-flight async
// runs become stale, a passing sync verdict schedules a fresh run) from a
// re-validation of the same value.
func (c *Controller) validateOwnLocked(e *fieldEntry, key string, next *FormState, valueChanged bool) {
	msg := c.ownSyncMessage(e, key, next.values[key], *next)
	hasAsync := e.cfg.ValidateAsync != nil && e.async != nil

	switch {
	case hasAsync && msg == "" && valueChanged:
		// Sync verdict passes provisionally; the async run decides.
		next.validations[key] = Pending()
		c.scheduleAsyncLocked(e, key, next.values[key])
	case hasAsync && msg != "":
		// Synchronously invalid: the field is not pending. When the value
		// changed the in-flight run is also stale; otherwise its eventual
		// non-stale result may still overwrite this message.
		next.validations[key] = Invalid(msg)
		c.settleAsyncLocked(e, valueChanged)
	case hasAsync && e.async.pending:
		// Same value, sync passes, run still in flight: stay pending.
		next.validations[key] = Pending()
	case hasAsync:
		// Same value, no run in flight: the last async verdict stands.
		next.validations[key] = resultOf(e.async.settled)
	default:
		next.validations[key] = resultOf(msg)
	}
}

// revalidateDependentLocked re-runs one dependent during propagation:
// derivation first (a changed derived value counts as a value mutation,
// including async rescheduling), then the sync/cross validators. Each
// dependent observes the working snapshot as earlier nodes left it.
func (c *Controller) revalidateDependentLocked(key string, next *FormState, changed *[]string) {
	e, ok := c.reg.get(key)
	if !ok {
		return
	}
	valueChanged := false
	if e.cfg.Derive != nil {
		if v, ok := c.deriveValue(e, key, *next); ok && !valueEqual(next.values[key], v) {
			next.values[key] = v
			c.updateDirtyLocked(next, e, key, v)
			valueChanged = true
			*changed = append(*changed, key)
		}
	}
	c.validateOwnLocked(e, key, next, valueChanged)
}

// deriveValue evaluates the derive callback, isolating errors and panics by
// leaving the existing value in place.
func (c *Controller) deriveValue(e *fieldEntry, key string, s FormState) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.diagnose(key, fmt.Errorf("derive panicked: %v", r))
			v, ok = nil, false
		}
	}()
	v, err := e.cfg.Derive(s)
	if err != nil {
		c.diagnose(key, err)
		return nil, false
	}
	return v, true
}

// ---- interaction flags and manual errors ----

// MarkTouched flags the field as interacted with. It runs no validators,
// pushes no history entry, and is a no-op when the flag is already set.
func (c *Controller) MarkTouched(key string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrControllerDisposed
	}
	if _, ok := c.reg.get(key); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrFieldNotRegistered, key)
	}
	if c.state.flags[key]&flagTouched != 0 {
		c.mu.Unlock()
		return nil
	}
	next := c.state.clone()
	next.flags[key] |= flagTouched
	n := c.commitLocked(next, nil, histNone)
	c.mu.Unlock()
	n.fire()
	return nil
}

// SetError force-sets the field's validation to invalid with the given
// message, bypassing its validators. Manual errors are not sticky: the next
// Validate or value mutation that re-runs the real validators overwrites
// them. An in-flight async run settles (the field stops counting as pending)
// but keeps its token, so its eventual result may still land.
func (c *Controller) SetError(key, message string) error {
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
	next.validations[key] = Invalid(message)
	c.settleAsyncLocked(e, false)
	next.pending = c.pendingCount
	n := c.commitLocked(next, nil, histNone)
	c.mu.Unlock()
	n.fire()
	return nil
}

// ---- presentation helpers ----

// FirstError returns the first field in registration order whose error
// should currently be shown, per ShouldShowError.
func (c *Controller) FirstError() (string, bool) {
	s := c.State()
	for _, key := range s.order {
		if ShouldShowError(s.Validation(key), s.IsTouched(key), s.submitting, c.autovalidate) {
			return key, true
		}
	}
	return "", false
}

// FocusFirstError asks the configured focus requester to focus the first
// currently-shown error and reports whether there was one.
func (c *Controller) FocusFirstError() bool {
	key, ok := c.FirstError()
	if ok && c.focusRequester != nil {
		c.focusRequester(key)
	}
	return ok
}

// IsVisible evaluates the field's visibility predicate against the current
// snapshot; fields without a predicate are visible.
func (c *Controller) IsVisible(key string) bool {
	c.mu.Lock()
	e, ok := c.reg.get(key)
	s := c.state
	c.mu.Unlock()
	if !ok || e.cfg.VisibleWhen == nil {
		return ok
	}
	return e.cfg.VisibleWhen(s)
}

// IsEnabled evaluates the field's enabled predicate against the current
// snapshot; fields without a predicate are enabled.
func (c *Controller) IsEnabled(key string) bool {
	c.mu.Lock()
	e, ok := c.reg.get(key)
	s := c.state
	c.mu.Unlock()
	if !ok || e.cfg.EnabledWhen == nil {
		return ok
	}
	return e.cfg.EnabledWhen(s)
}

// ---- observation ----

// Watch subscribes to every committed snapshot. The callback runs after the
// commit, outside the controller lock. The returned cancel is idempotent.
func (c *Controller) Watch(fn func(FormState)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	id := c.hub.addState(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.hub.removeState(id)
	}
}

// WatchValue subscribes to value changes of a single key. The callback fires
// only when the stored value actually changed, not on every commit.
func (c *Controller) WatchValue(key string, fn func(any)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	id := c.hub.addValue(key, fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.hub.removeValue(key, id)
	}
}

// ---- lifecycle ----

// Dispose tears the controller down: all bindings it holds as a target are
// unsubscribed from their sources, observers are dropped, in-flight async
// runs are invalidated and the pending count returns to zero. Mutations after
// Dispose fail with ErrControllerDisposed.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	bs := c.bindings
	c.bindings = nil
	c.hub.clear()
	for _, key := range c.reg.keys() {
		if e, ok := c.reg.get(key); ok {
			c.settleAsyncLocked(e, true)
		}
	}
	c.pendingCount = 0
	if c.idleCh != nil {
		close(c.idleCh)
		c.idleCh = nil
	}
	c.mu.Unlock()
	for _, b := range bs {
		b.cancelSource()
	}
}

// Disposed reports whether Dispose has run.
func (c *Controller) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
