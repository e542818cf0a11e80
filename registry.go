package formwork

// fieldEntry pairs a registration config with the field's async runtime
// state. The async state survives re-registration so that sequence tokens
// stay monotonic for the key's whole lifetime.
type fieldEntry struct {
	cfg   AnyFieldConfig
	async *asyncState
}

// registry is the bookkeeping of active fields: config per key plus the
// registration order used for deterministic iteration. Not safe for
// concurrent use; the controller serializes access.
type registry struct {
	entries map[string]*fieldEntry
	order   []string
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*fieldEntry)}
}

func (r *registry) get(key string) (*fieldEntry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// put stores the config, replacing a previous registration of the same key in
// place (the key keeps its registration rank). Reports whether the key
// already existed.
func (r *registry) put(cfg AnyFieldConfig) (*fieldEntry, bool) {
	if e, ok := r.entries[cfg.Key]; ok {
		e.cfg = cfg
		if cfg.ValidateAsync != nil && e.async == nil {
			e.async = &asyncState{}
		}
		return e, true
	}
	e := &fieldEntry{cfg: cfg}
	if cfg.ValidateAsync != nil {
		e.async = &asyncState{}
	}
	r.entries[cfg.Key] = e
	r.order = append(r.order, cfg.Key)
	return e, false
}

func (r *registry) remove(key string) {
	if _, ok := r.entries[key]; !ok {
		return
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// keys returns the live registration order. Callers must not retain or
// mutate the returned slice across registry mutations.
func (r *registry) keys() []string { return r.order }
