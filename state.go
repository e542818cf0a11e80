package formwork

import (
	"maps"
	"slices"
	"strings"
)

// fieldFlags packs the per-field interaction bits into one map entry. The
// layout mirrors a presence bitset: one byte per field, combined with
// bitwise OR.
type fieldFlags uint8

const (
	// flagDirty is set once the value differs from the registered initial.
	flagDirty fieldFlags = 1 << iota
	// flagTouched is set once the field has been interacted with or
	// explicitly marked.
	flagTouched
)

// FormState is the authoritative immutable snapshot of a form: every value,
// every validation result, the per-field dirty/touched bits and the
// submission/pending flags. A new snapshot replaces the previous one
// wholesale on each committed mutation, so holders always observe a
// consistent view; the maps inside are never mutated after publication.
type FormState struct {
	values      map[string]any
	validations map[string]ValidationResult
	flags       map[string]fieldFlags
	order       []string
	submitting  bool
	pending     int
}

// Value returns the stored value for the given dotted-path key. Keys carrying
// array-index suffixes ("items[2]", "items[0].qty") resolve into the
// composite value stored under the array's own key.
func (s FormState) Value(key string) (any, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	return resolveValue(s.values, key)
}

// Validation returns the validation result recorded for key. Unknown keys
// report a passing result so that optional lookups stay cheap at call sites.
func (s FormState) Validation(key string) ValidationResult {
	if r, ok := s.validations[key]; ok {
		return r
	}
	return OK()
}

// IsDirty reports whether the field's value differs from its initial.
func (s FormState) IsDirty(key string) bool { return s.flags[key]&flagDirty != 0 }

// IsTouched reports whether the field has been interacted with.
func (s FormState) IsTouched(key string) bool { return s.flags[key]&flagTouched != 0 }

// Submitting reports whether a submission is currently running.
func (s FormState) Submitting() bool { return s.submitting }

// PendingCount returns the number of fields whose async validation is in
// flight. It always equals the number of validations with Validating set.
func (s FormState) PendingCount() int { return s.pending }

// ErrorCount returns the number of fields whose validation settled invalid.
func (s FormState) ErrorCount() int {
	n := 0
	for _, r := range s.validations {
		if !r.Valid {
			n++
		}
	}
	return n
}

// IsValid reports whether no field is invalid. Fields still validating count
// as provisionally valid; submission is the place where pending results are
// awaited.
func (s FormState) IsValid() bool { return s.ErrorCount() == 0 }

// IsFormDirty reports whether any field is dirty.
func (s FormState) IsFormDirty() bool {
	for _, f := range s.flags {
		if f&flagDirty != 0 {
			return true
		}
	}
	return false
}

// Keys returns the registered field keys in registration order.
func (s FormState) Keys() []string { return slices.Clone(s.order) }

// ErrorMessages collects the messages of all settled-invalid fields, keyed by
// field. This is the shape handed to a submit onError callback.
func (s FormState) ErrorMessages() map[string]string {
	out := make(map[string]string)
	for k, r := range s.validations {
		if !r.Valid {
			out[k] = r.Message
		}
	}
	return out
}

// IsGroupValid reports whether every field strictly under the dot-prefix
// "prefix." is valid. An empty group is vacuously valid.
func (s FormState) IsGroupValid(prefix string) bool {
	p := prefix + "."
	for k, r := range s.validations {
		if strings.HasPrefix(k, p) && !r.Valid {
			return false
		}
	}
	return true
}

// IsGroupDirty reports whether any field strictly under the dot-prefix
// "prefix." is dirty. An empty group is not dirty.
func (s FormState) IsGroupDirty(prefix string) bool {
	p := prefix + "."
	for k, f := range s.flags {
		if strings.HasPrefix(k, p) && f&flagDirty != 0 {
			return true
		}
	}
	return false
}

// GroupKeys returns the registered keys strictly under "prefix.", in
// registration order.
func (s FormState) GroupKeys(prefix string) []string {
	p := prefix + "."
	var out []string
	for _, k := range s.order {
		if strings.HasPrefix(k, p) {
			out = append(out, k)
		}
	}
	return out
}

// clone produces a deep-enough copy for the next mutable generation: maps are
// duplicated, values are shared (values themselves are treated as immutable
// by contract).
func (s FormState) clone() FormState {
	return FormState{
		values:      maps.Clone(s.values),
		validations: maps.Clone(s.validations),
		flags:       maps.Clone(s.flags),
		order:       slices.Clone(s.order),
		submitting:  s.submitting,
		pending:     s.pending,
	}
}

// resolveValue navigates composite values for keys that address into arrays
// ("items[2]") or into map-valued leaves ("address.city" when "address"
// stores a map). The flat map is consulted longest-prefix-first.
func resolveValue(values map[string]any, key string) (any, bool) {
	base, acc, ok := splitLastAccessor(key)
	if !ok {
		return nil, false
	}
	parent, found := values[base]
	if !found {
		parent, found = resolveValue(values, base)
	}
	if !found {
		return nil, false
	}
	return acc.apply(parent)
}

// accessor is a single navigation step produced by splitLastAccessor: either
// an array index or a map key.
type accessor struct {
	index  int
	mapKey string
	isIdx  bool
}

func (a accessor) apply(parent any) (any, bool) {
	if a.isIdx {
		return indexInto(parent, a.index)
	}
	switch m := parent.(type) {
	case map[string]any:
		v, ok := m[a.mapKey]
		return v, ok
	default:
		return nil, false
	}
}

// splitLastAccessor peels the last navigation step off a key:
// "items[2]" -> ("items", [2]); "a.b" -> ("a", "b"). ok=false when the key
// has no step left to peel.
func splitLastAccessor(key string) (string, accessor, bool) {
	if strings.HasSuffix(key, "]") {
		open := strings.LastIndexByte(key, '[')
		if open <= 0 {
			return "", accessor{}, false
		}
		idx, ok := parseIndex(key[open+1 : len(key)-1])
		if !ok {
			return "", accessor{}, false
		}
		return key[:open], accessor{index: idx, isIdx: true}, true
	}
	if dot := strings.LastIndexByte(key, '.'); dot > 0 {
		return key[:dot], accessor{mapKey: key[dot+1:]}, true
	}
	return "", accessor{}, false
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// indexInto indexes a stored slice of any element type without reflection for
// the common shapes, falling back to a generic path otherwise.
func indexInto(v any, i int) (any, bool) {
	switch s := v.(type) {
	case []any:
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return s[i], true
	case []string:
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return s[i], true
	case []int:
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return s[i], true
	case []float64:
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return s[i], true
	case []map[string]any:
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return s[i], true
	}
	return reflectIndex(v, i)
}
