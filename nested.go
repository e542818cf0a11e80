package formwork

import (
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Nested converts the flat dotted-key value map into a nested map by
// splitting each key on "." and building intermediate maps:
//
//	{"user.name": "John", "user.age": 30} -> {"user": {"name": "John", "age": 30}}
//
// Array-index segments are not expanded; an array field stores its composite
// slice under its own key, so it exports naturally as a slice value. When a
// scalar leaf and a deeper path collide ("user" next to "user.name"), the map
// side wins.
func (s FormState) Nested() map[string]any {
	return nestValues(s.values)
}

func nestValues(values map[string]any) map[string]any {
	// Deterministic insertion order keeps collision handling stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		segs := strings.Split(key, ".")
		cur := root
		for i, seg := range segs {
			if i == len(segs)-1 {
				if _, exists := cur[seg]; exists {
					if _, isMap := cur[seg].(map[string]any); isMap {
						// A deeper path already claimed this segment; the
						// scalar loses.
						break
					}
				}
				cur[seg] = values[key]
				break
			}
			next, ok := cur[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[seg] = next
			}
			cur = next
		}
	}
	return root
}

// Flatten is the inverse of Nested: nested maps collapse into dotted keys,
// slices stay as composite leaf values. Used by draft import and the
// declarative definition loader.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flattenInto(out, key, sub)
			continue
		}
		out[key] = v
	}
}

// stateJSON is the serialized shape of a snapshot.
type stateJSON struct {
	Values       map[string]any              `json:"values"`
	Validations  map[string]ValidationResult `json:"validations,omitempty"`
	Dirty        []string                    `json:"dirty,omitempty"`
	Touched      []string                    `json:"touched,omitempty"`
	Submitting   bool                        `json:"submitting,omitempty"`
	PendingCount int                         `json:"pendingCount,omitempty"`
}

// MarshalJSON serializes the snapshot with nested values and sorted flag
// lists, producing stable output for logs and golden files.
func (s FormState) MarshalJSON() ([]byte, error) {
	var dirty, touched []string
	for k, f := range s.flags {
		if f&flagDirty != 0 {
			dirty = append(dirty, k)
		}
		if f&flagTouched != 0 {
			touched = append(touched, k)
		}
	}
	sort.Strings(dirty)
	sort.Strings(touched)
	return json.Marshal(stateJSON{
		Values:       s.Nested(),
		Validations:  s.validations,
		Dirty:        dirty,
		Touched:      touched,
		Submitting:   s.submitting,
		PendingCount: s.pending,
	})
}
