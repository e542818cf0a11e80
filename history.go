package formwork

// DefaultHistoryCapacity bounds the undo/redo buffer unless overridden with
// WithHistoryCapacity.
const DefaultHistoryCapacity = 50

// historyRing is the bounded undo/redo buffer over committed snapshots. The
// cursor always points at the entry mirroring the live state; undo moves it
// back, redo forward, and a push truncates any redo tail before appending.
// Pushing past the capacity evicts the oldest entry, so the buffer never
// grows beyond the cap.
type historyRing struct {
	entries []FormState
	cur     int
	limit   int
}

func newHistoryRing(limit int) *historyRing {
	if limit < 1 {
		limit = 1
	}
	return &historyRing{cur: -1, limit: limit}
}

// push appends a committed snapshot, dropping the redo tail and evicting the
// oldest entry when over capacity.
func (h *historyRing) push(s FormState) {
	h.entries = append(h.entries[:h.cur+1], s)
	h.cur = len(h.entries) - 1
	if len(h.entries) > h.limit {
		n := copy(h.entries, h.entries[1:])
		h.entries = h.entries[:n]
		h.cur--
	}
}

// replaceCurrent swaps the entry under the cursor without moving it. Used by
// registration changes, which rewrite the baseline instead of recording an
// undoable step.
func (h *historyRing) replaceCurrent(s FormState) {
	if h.cur < 0 {
		h.push(s)
		return
	}
	h.entries[h.cur] = s
}

func (h *historyRing) undo() (FormState, bool) {
	if h.cur <= 0 {
		return FormState{}, false
	}
	h.cur--
	return h.entries[h.cur], true
}

func (h *historyRing) redo() (FormState, bool) {
	if h.cur >= len(h.entries)-1 {
		return FormState{}, false
	}
	h.cur++
	return h.entries[h.cur], true
}

func (h *historyRing) len() int      { return len(h.entries) }
func (h *historyRing) canUndo() bool { return h.cur > 0 }
func (h *historyRing) canRedo() bool { return h.cur < len(h.entries)-1 }

// ---- controller surface ----

// Undo steps the form back to the previous committed snapshot. At the oldest
// retained entry it is a no-op returning false. Restoring a snapshot
// invalidates all in-flight async runs; restored fields that were awaiting an
// async verdict at capture time get their sync validators re-run instead, so
// the restored state never claims a validation that is not actually running.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	entry, ok := c.history.undo()
	if !ok {
		c.mu.Unlock()
		return false
	}
	n := c.restoreLocked(entry)
	c.mu.Unlock()
	n.fire()
	return true
}

// Redo steps forward again after an Undo; a no-op returning false at the
// newest entry.
func (c *Controller) Redo() bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	entry, ok := c.history.redo()
	if !ok {
		c.mu.Unlock()
		return false
	}
	n := c.restoreLocked(entry)
	c.mu.Unlock()
	n.fire()
	return true
}

// restoreLocked adapts a history entry for commit: in-flight async runs are
// settled, captured pending verdicts are re-resolved synchronously, and the
// live submitting flag is carried over. The cursor has already moved, so the
// commit records no history.
func (c *Controller) restoreLocked(entry FormState) *notification {
	restored := entry.clone()
	for _, key := range c.reg.keys() {
		e, _ := c.reg.get(key)
		// The restored values may differ from the ones any in-flight run or
		// settled verdict was computed against.
		c.settleAsyncLocked(e, true)
	}
	for key, r := range restored.validations {
		if !r.Validating {
			continue
		}
		if e, ok := c.reg.get(key); ok {
			restored.validations[key] = resultOf(c.ownSyncMessage(e, key, restored.values[key], restored))
		} else {
			restored.validations[key] = ValidationResult{Valid: r.Valid, Message: r.Message}
		}
	}
	restored.pending = c.pendingCount
	restored.submitting = c.state.submitting
	changed := changedValueKeys(c.state, restored)
	return c.commitLocked(restored, changed, histNone)
}

// HistoryLen reports the number of retained snapshots, the baseline included.
func (c *Controller) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.len()
}

// CanUndo reports whether Undo would move the cursor.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.canUndo()
}

// CanRedo reports whether Redo would move the cursor.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.canRedo()
}

// changedValueKeys lists keys whose stored value differs between two
// snapshots, in the order of the destination snapshot.
func changedValueKeys(from, to FormState) []string {
	var keys []string
	seen := make(map[string]bool, len(to.values))
	for _, key := range to.order {
		if _, ok := to.values[key]; !ok {
			continue
		}
		seen[key] = true
		if !valueEqual(from.values[key], to.values[key]) {
			keys = append(keys, key)
		}
	}
	for key, v := range to.values {
		if seen[key] {
			continue
		}
		seen[key] = true
		if !valueEqual(from.values[key], v) {
			keys = append(keys, key)
		}
	}
	for key, v := range from.values {
		if seen[key] {
			continue
		}
		if _, ok := to.values[key]; !ok && v != nil {
			keys = append(keys, key)
		}
	}
	return keys
}
