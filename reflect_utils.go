package formwork

import "reflect"

// reflectIndex indexes into an arbitrary stored slice value. Used as the slow
// path behind FormState value resolution when the element type is not one of
// the common shapes.
func reflectIndex(v any, i int) (any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}

// valueEqual is the repository-wide value-equality rule used by the no-op
// check in Set and by dirty tracking: deep structural equality, so composite
// array values compare by contents.
func valueEqual(a, b any) bool { return reflect.DeepEqual(a, b) }

// asType performs the checked downcast behind the type-erased validator
// wrappers. A nil stored value yields the zero value of T with ok=true, since
// validators accept the "absent" case.
func asType[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, true
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// sliceLen returns the length of a stored slice value, ok=false when the
// value is not a slice.
func sliceLen(v any) (int, bool) {
	if v == nil {
		return 0, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}
