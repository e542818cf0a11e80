package formwork

// watchHub stores the observer callbacks. Registration and removal happen
// under the controller lock; invocation happens strictly after commit,
// outside the lock, so callbacks are free to call back into the controller.
type watchHub struct {
	nextID int
	states []stateWatcher
	values map[string][]valueWatcher
}

type stateWatcher struct {
	id int
	fn func(FormState)
}

type valueWatcher struct {
	id int
	fn func(any)
}

func newWatchHub() *watchHub {
	return &watchHub{values: make(map[string][]valueWatcher)}
}

func (h *watchHub) addState(fn func(FormState)) int {
	h.nextID++
	h.states = append(h.states, stateWatcher{id: h.nextID, fn: fn})
	return h.nextID
}

func (h *watchHub) removeState(id int) {
	for i, w := range h.states {
		if w.id == id {
			h.states = append(h.states[:i:i], h.states[i+1:]...)
			return
		}
	}
}

func (h *watchHub) addValue(key string, fn func(any)) int {
	h.nextID++
	h.values[key] = append(h.values[key], valueWatcher{id: h.nextID, fn: fn})
	return h.nextID
}

func (h *watchHub) removeValue(key string, id int) {
	ws := h.values[key]
	for i, w := range ws {
		if w.id == id {
			h.values[key] = append(ws[:i:i], ws[i+1:]...)
			if len(h.values[key]) == 0 {
				delete(h.values, key)
			}
			return
		}
	}
}

func (h *watchHub) clear() {
	h.states = nil
	h.values = make(map[string][]valueWatcher)
}

// notification is the deferred fan-out built under the lock and fired after
// it is released.
type notification struct {
	snapshot FormState
	states   []stateWatcher
	perValue []valueNotification
}

type valueNotification struct {
	watchers []valueWatcher
	value    any
}

// prepare captures the watcher lists and changed values for a commit. The
// returned notification is safe to fire without the lock.
func (h *watchHub) prepare(s FormState, changedKeys []string) *notification {
	n := &notification{snapshot: s}
	if len(h.states) > 0 {
		n.states = append([]stateWatcher(nil), h.states...)
	}
	for _, key := range changedKeys {
		ws := h.values[key]
		if len(ws) == 0 {
			continue
		}
		v, _ := s.Value(key)
		n.perValue = append(n.perValue, valueNotification{
			watchers: append([]valueWatcher(nil), ws...),
			value:    v,
		})
	}
	if len(n.states) == 0 && len(n.perValue) == 0 {
		return nil
	}
	return n
}

// fire invokes the captured callbacks in registration order.
func (n *notification) fire() {
	if n == nil {
		return
	}
	for _, w := range n.states {
		w.fn(n.snapshot)
	}
	for _, vn := range n.perValue {
		for _, w := range vn.watchers {
			w.fn(vn.value)
		}
	}
}
