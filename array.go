package formwork

import (
	"fmt"
	"slices"
)

// Array operations are sugar over the regular mutation pipeline: each builds
// the new slice and stores it as the array field's value, so one operation is
// one history entry, one emission, and one dependent re-validation pass.
// Validators attached to the array field or to fields depending on it
// therefore re-run on every structural change.

// Items reads the array's current elements. A missing or differently-typed
// value reads as nil; the returned slice is a copy.
func Items[T any](s FormState, id ArrayID[T]) []T {
	v, ok := s.Value(id.Key())
	if !ok {
		return nil
	}
	arr, ok := v.([]T)
	if !ok {
		return nil
	}
	return slices.Clone(arr)
}

// AppendItem adds an element at the end of the array.
func AppendItem[T any](c *Controller, id ArrayID[T], item T) error {
	return mutateSlice(c, id, func(cur []T) ([]T, error) {
		return append(slices.Clone(cur), item), nil
	})
}

// InsertItemAt inserts an element at index i, shifting the tail. i may equal
// the current length, which appends.
func InsertItemAt[T any](c *Controller, id ArrayID[T], i int, item T) error {
	return mutateSlice(c, id, func(cur []T) ([]T, error) {
		if i < 0 || i > len(cur) {
			return nil, fmt.Errorf("%w: insert at %d, length %d", ErrIndexOutOfRange, i, len(cur))
		}
		return slices.Insert(slices.Clone(cur), i, item), nil
	})
}

// RemoveItemAt removes the element at index i.
func RemoveItemAt[T any](c *Controller, id ArrayID[T], i int) error {
	return mutateSlice(c, id, func(cur []T) ([]T, error) {
		if i < 0 || i >= len(cur) {
			return nil, fmt.Errorf("%w: remove at %d, length %d", ErrIndexOutOfRange, i, len(cur))
		}
		return slices.Delete(slices.Clone(cur), i, i+1), nil
	})
}

// ReplaceItemAt overwrites the element at index i.
func ReplaceItemAt[T any](c *Controller, id ArrayID[T], i int, item T) error {
	return mutateSlice(c, id, func(cur []T) ([]T, error) {
		if i < 0 || i >= len(cur) {
			return nil, fmt.Errorf("%w: replace at %d, length %d", ErrIndexOutOfRange, i, len(cur))
		}
		next := slices.Clone(cur)
		next[i] = item
		return next, nil
	})
}

// MoveItem removes the element at from and reinserts it at to, where to
// addresses a position in the slice after the removal.
func MoveItem[T any](c *Controller, id ArrayID[T], from, to int) error {
	return mutateSlice(c, id, func(cur []T) ([]T, error) {
		if from < 0 || from >= len(cur) {
			return nil, fmt.Errorf("%w: move from %d, length %d", ErrIndexOutOfRange, from, len(cur))
		}
		if to < 0 || to >= len(cur) {
			return nil, fmt.Errorf("%w: move to %d, length %d", ErrIndexOutOfRange, to, len(cur))
		}
		next := slices.Clone(cur)
		item := next[from]
		next = slices.Delete(next, from, from+1)
		return slices.Insert(next, to, item), nil
	})
}

// ClearArray empties the array.
func ClearArray[T any](c *Controller, id ArrayID[T]) error {
	return mutateSlice(c, id, func([]T) ([]T, error) {
		return []T{}, nil
	})
}

// mutateSlice runs a read-modify-write on the array value inside one lock
// hold, so concurrent array operations never lose updates.
func mutateSlice[T any](c *Controller, id ArrayID[T], fn func([]T) ([]T, error)) error {
	return c.mutateValue(id.Key(), func(cur any) (any, error) {
		var arr []T
		switch v := cur.(type) {
		case nil:
		case []T:
			arr = v
		default:
			return nil, fmt.Errorf("%w: %q holds %T", ErrNotArray, id.Key(), cur)
		}
		return fn(arr)
	})
}

// mutateValue is the locked read-modify-write primitive behind the array
// operations. fn receives the stored value and returns the replacement; the
// replacement goes through the full mutation pipeline.
func (c *Controller) mutateValue(key string, fn func(cur any) (any, error)) error {
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
	v, err := fn(c.state.values[key])
	if err != nil {
		c.mu.Unlock()
		return err
	}
	n := c.applySetLocked(e, key, v)
	c.mu.Unlock()
	n.fire()
	return nil
}
