// Package store persists form drafts: the flattened values of a form at some
// point in time, keyed by a generated ID. A draft is deliberately dumb data —
// restoring one goes through the controller's regular Patch transaction so
// validation and propagation apply as if the user had typed the values.
package store

import (
	"context"
	"errors"
	"time"

	formwork "github.com/quharo/formwork"
)

// ErrNotFound is returned when no draft exists under the given ID.
var ErrNotFound = errors.New("store: draft not found")

// Draft is one saved form state.
type Draft struct {
	ID        string
	Form      string
	Values    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists drafts. Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or updates the draft, assigning an ID when empty and
	// bumping UpdatedAt. The passed draft is updated in place.
	Save(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (Draft, error)
	// List returns the form's drafts, most recently updated first. An empty
	// form name lists everything.
	List(ctx context.Context, form string) ([]Draft, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot captures the controller's current values as a draft payload.
// It flattens the full value map rather than walking active registrations,
// so values preserved by UnregisterPreserving (inactive wizard steps) are
// part of the draft too.
func Snapshot(c *formwork.Controller, form string) Draft {
	return Draft{Form: form, Values: formwork.Flatten(c.State().Nested())}
}

// Restore patches a draft's values into the controller as one transaction.
// Keys without an active registration are skipped, so a draft saved by a
// larger form restores cleanly into a narrower one. Values that crossed a
// JSON boundary (the sqlite payload) are coerced back toward the registered
// field's value type via the controller's witness-based coercion.
func Restore(c *formwork.Controller, d Draft) error {
	values := make(map[string]any, len(d.Values))
	for key, v := range d.Values {
		if !c.Registered(key) {
			continue
		}
		values[key] = c.CoerceValue(key, v)
	}
	if len(values) == 0 {
		return nil
	}
	return c.Patch(values)
}

// now returns UTC time truncated to seconds, matching SQLite's timestamp
// resolution so the memory and sqlite stores order drafts identically.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
