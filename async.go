package formwork

import (
	"context"
	"fmt"
	"time"

	"github.com/quharo/formwork/i18n"
)

// asyncState is the per-field async validation runtime. seq is the
// monotonically increasing sequence token: a run may apply its result only
// while its captured token is still the latest, which is how superseded runs
// are discarded ("logical cancellation" — the underlying operation is never
// interrupted, its result is simply ignored). pending records whether the
// field currently counts toward pendingCount; it is flipped exactly once per
// settle, whether the run completes, is superseded by a newer run, or the
// field is preempted by a synchronous failure.
type asyncState struct {
	seq     uint64
	pending bool
	timer   *time.Timer
	// settled holds the last async verdict that landed for the current
	// value, "" when passing. Sync-only revalidation (Validate, dependent
	// propagation without a value change) restores it instead of silently
	// clearing an async failure the sync rules cannot see.
	settled string
}

// scheduleAsyncLocked issues a new sequence token for the field, marks it
// pending and arms the debounce timer. Caller holds the controller lock and
// has already stored the Pending placeholder in the working snapshot.
func (c *Controller) scheduleAsyncLocked(e *fieldEntry, key string, value any) {
	e.async.seq++
	tok := e.async.seq
	e.async.settled = ""
	if !e.async.pending {
		e.async.pending = true
		c.pendingCount++
	}
	if e.async.timer != nil {
		e.async.timer.Stop()
	}
	fn := e.cfg.ValidateAsync
	e.async.timer = time.AfterFunc(e.cfg.debounceWindow(), func() {
		msg, err := runAsyncValidator(fn, value)
		c.completeAsync(key, tok, msg, err)
	})
}

// settleAsyncLocked takes the field out of the pending set. bumpToken
// additionally invalidates the in-flight run — used when the value changed
// and the run's eventual verdict no longer applies. Without the bump a late,
// non-stale result may still overwrite the stored message; the pending flag
// guarantees the count is decremented at most once either way.
func (c *Controller) settleAsyncLocked(e *fieldEntry, bumpToken bool) {
	if e.async == nil {
		return
	}
	if bumpToken {
		e.async.seq++
		e.async.settled = ""
		if e.async.timer != nil {
			e.async.timer.Stop()
			e.async.timer = nil
		}
	}
	if e.async.pending {
		e.async.pending = false
		c.pendingCount--
	}
}

// completeAsync lands an async validator result. Stale tokens are discarded
// without any observable effect.
func (c *Controller) completeAsync(key string, tok uint64, msg string, infraErr error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	e, ok := c.reg.get(key)
	if !ok || e.async == nil || e.async.seq != tok {
		c.mu.Unlock()
		return
	}
	if infraErr != nil {
		c.diagnose(key, infraErr)
		msg = i18n.T(CodeAsyncFailed, nil)
	}
	e.async.settled = msg
	next := c.state.clone()
	next.validations[key] = resultOf(msg)
	if e.async.pending {
		e.async.pending = false
		c.pendingCount--
	}
	next.pending = c.pendingCount
	n := c.commitLocked(next, nil, histNone)
	c.mu.Unlock()
	n.fire()
}

// runAsyncValidator executes the user-supplied async validator, converting a
// panic into an infrastructure error so one misbehaving callback cannot take
// down the process.
func runAsyncValidator(fn func(context.Context, any) (string, error), value any) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async validator panicked: %v", r)
		}
	}()
	return fn(context.Background(), value)
}

// WaitIdle blocks until no async validation is in flight or the context is
// done. Submit uses the same wait internally; tests use it to settle the form
// deterministically.
func (c *Controller) WaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.pendingCount == 0 {
			c.mu.Unlock()
			return nil
		}
		if c.idleCh == nil {
			c.idleCh = make(chan struct{})
		}
		ch := c.idleCh
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
