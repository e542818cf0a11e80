package formwork

import "strings"

// FieldID identifies a single form field by its dotted-path key while carrying
// the field's value type as a phantom parameter. Equality and hashing use the
// key alone; the type parameter is a compile-time guarantee that restores
// type-checking at accessor call sites (ValueOf, Set) on top of the
// string-keyed storage. Construction cannot fail beyond the empty-key check;
// malformed keys fail at the accessor, not here.
type FieldID[T any] struct {
	key string
}

// Field builds a FieldID for the given dotted-path key, for example
// "user.email" or "items[2]". The key must be non-empty.
func Field[T any](key string) FieldID[T] {
	if key == "" {
		panic("formwork.Field: key must not be empty")
	}
	return FieldID[T]{key: key}
}

// Key returns the raw dotted-path key.
func (id FieldID[T]) Key() string { return id.key }

// String returns the key, making FieldID convenient in log output.
func (id FieldID[T]) String() string { return id.key }

// LocalName returns the last dot-segment of the key: "email" for
// "user.email", "items[2]" for "order.items[2]".
func (id FieldID[T]) LocalName() string {
	if i := strings.LastIndexByte(id.key, '.'); i >= 0 {
		return id.key[i+1:]
	}
	return id.key
}

// ParentKey returns the key with the last dot-segment removed, or ok=false
// when the key has no dot (a root-level field).
func (id FieldID[T]) ParentKey() (string, bool) {
	if i := strings.LastIndexByte(id.key, '.'); i >= 0 {
		return id.key[:i], true
	}
	return "", false
}

// WithPrefix returns a FieldID addressing the same field inside the given
// group prefix: Field[string]("name").WithPrefix("user") addresses
// "user.name". An empty prefix returns the receiver unchanged.
func (id FieldID[T]) WithPrefix(prefix string) FieldID[T] {
	if prefix == "" {
		return id
	}
	return FieldID[T]{key: prefix + "." + id.key}
}

// ArrayID identifies an array-valued field whose stored value is the composite
// slice. Item addresses a single element; AsField addresses the composite
// value itself for use with Set and ValueOf.
type ArrayID[T any] struct {
	key string
}

// Array builds an ArrayID for the given key. The key must be non-empty.
func Array[T any](key string) ArrayID[T] {
	if key == "" {
		panic("formwork.Array: key must not be empty")
	}
	return ArrayID[T]{key: key}
}

// Key returns the raw key of the array field.
func (id ArrayID[T]) Key() string { return id.key }

// String returns the key.
func (id ArrayID[T]) String() string { return id.key }

// Item returns the FieldID addressing element i, with key "base[i]".
func (id ArrayID[T]) Item(i int) FieldID[T] {
	return FieldID[T]{key: id.key + "[" + itoa(i) + "]"}
}

// AsField returns the FieldID addressing the whole composite slice value.
func (id ArrayID[T]) AsField() FieldID[[]T] { return FieldID[[]T]{key: id.key} }

// WithPrefix returns an ArrayID addressing the same array inside the given
// group prefix.
func (id ArrayID[T]) WithPrefix(prefix string) ArrayID[T] {
	if prefix == "" {
		return id
	}
	return ArrayID[T]{key: prefix + "." + id.key}
}

// Keyer is the common surface of FieldID and ArrayID across type parameters;
// it lets APIs accept either without erasing to raw strings at call sites.
type Keyer interface {
	Key() string
}

// KeysOf collects the raw keys of the given ids, preserving order.
func KeysOf(ids ...Keyer) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Key())
	}
	return out
}

// ValueOf reads the value stored for id from the snapshot. It returns
// ok=false when the key is absent or the stored value has a different dynamic
// type; it never panics on mismatch.
func ValueOf[T any](s FormState, id FieldID[T]) (T, bool) {
	var zero T
	v, ok := s.Value(id.key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// ValueOr reads the value stored for id, falling back to fallback when the
// key is absent or mistyped.
func ValueOr[T any](s FormState, id FieldID[T], fallback T) T {
	if v, ok := ValueOf(s, id); ok {
		return v
	}
	return fallback
}

// itoa avoids pulling strconv into the hot key-building path for small
// non-negative indexes; negative indexes still format correctly.
func itoa(i int) string {
	if i >= 0 && i < 10 {
		return string([]byte{byte('0' + i)})
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}
