package formwork_test

import (
	"testing"

	formwork "github.com/quharo/formwork"
)

func newCounterForm(t *testing.T, opts ...formwork.Option) (*formwork.Controller, formwork.FieldID[int]) {
	t.Helper()
	c := formwork.New(opts...)
	t.Cleanup(c.Dispose)
	n := formwork.Field[int]("n")
	if err := formwork.RegisterField(c, formwork.FieldConfig[int]{ID: n}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return c, n
}

func mustSet[T any](t *testing.T, c *formwork.Controller, id formwork.FieldID[T], v T) {
	t.Helper()
	if err := formwork.Set(c, id, v); err != nil {
		t.Fatalf("set %s: %v", id, err)
	}
}

func wantValue[T comparable](t *testing.T, c *formwork.Controller, id formwork.FieldID[T], want T) {
	t.Helper()
	got, ok := formwork.Get(c, id)
	if !ok || got != want {
		t.Fatalf("expected %s == %v, got %v (ok=%v)", id, want, got, ok)
	}
}

func TestHistory_BaselineOnly(t *testing.T) {
	c, _ := newCounterForm(t)
	if got := c.HistoryLen(); got != 1 {
		t.Fatalf("expected the registration baseline as the only entry, got %d", got)
	}
	if c.CanUndo() {
		t.Fatalf("expected CanUndo false at the baseline")
	}
	if c.Undo() {
		t.Fatalf("expected Undo to be a no-op at the baseline")
	}
	if c.Redo() {
		t.Fatalf("expected Redo to be a no-op at the newest entry")
	}
}

func TestHistory_UndoRedoWalk(t *testing.T) {
	c, n := newCounterForm(t)
	for _, v := range []int{1, 2, 3} {
		mustSet(t, c, n, v)
	}
	if got := c.HistoryLen(); got != 4 {
		t.Fatalf("expected 4 entries, got %d", got)
	}

	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	wantValue(t, c, n, 2)
	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	wantValue(t, c, n, 1)

	if !c.Redo() {
		t.Fatalf("redo failed")
	}
	wantValue(t, c, n, 2)
	if !c.Redo() {
		t.Fatalf("redo failed")
	}
	wantValue(t, c, n, 3)
	if c.CanRedo() {
		t.Fatalf("expected CanRedo false at the newest entry")
	}
}

func TestHistory_MutationTruncatesRedoTail(t *testing.T) {
	c, n := newCounterForm(t)
	mustSet(t, c, n, 2)
	mustSet(t, c, n, 3)
	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	wantValue(t, c, n, 2)

	mustSet(t, c, n, 9)
	if c.CanRedo() {
		t.Fatalf("expected the redo tail dropped by the new mutation")
	}
	if c.Redo() {
		t.Fatalf("expected Redo to be a no-op after truncation")
	}
	wantValue(t, c, n, 9)
	if got := c.HistoryLen(); got != 3 {
		t.Fatalf("expected entries [initial, 2, 9], got %d entries", got)
	}
}

// TestHistory_CapacityEvictsOldest drives a hundred mutations through the
// default fifty-entry buffer: the oldest snapshots fall off and the undo
// floor lands on the oldest retained one.
func TestHistory_CapacityEvictsOldest(t *testing.T) {
	c, n := newCounterForm(t)
	for i := 1; i <= 100; i++ {
		mustSet(t, c, n, i)
	}
	if got := c.HistoryLen(); got != formwork.DefaultHistoryCapacity {
		t.Fatalf("expected the buffer capped at %d, got %d", formwork.DefaultHistoryCapacity, got)
	}

	steps := 0
	for c.Undo() {
		steps++
		if steps > 100 {
			t.Fatalf("undo never reached the floor")
		}
	}
	if steps != 49 {
		t.Fatalf("expected 49 undo steps to the floor, got %d", steps)
	}
	wantValue(t, c, n, 51)
}

func TestHistory_CustomCapacity(t *testing.T) {
	c, n := newCounterForm(t, formwork.WithHistoryCapacity(3))
	for i := 1; i <= 5; i++ {
		mustSet(t, c, n, i)
	}
	if got := c.HistoryLen(); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}
	for c.Undo() {
	}
	wantValue(t, c, n, 3)
}

// TestHistory_UndoRestoresValidationAndFlags checks that stepping back
// rewinds the validation verdicts and the dirty flag together with the value.
func TestHistory_UndoRestoresValidationAndFlags(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	name := formwork.Field[string]("name")
	if err := formwork.RegisterField(c, formwork.FieldConfig[string]{
		ID:       name,
		Validate: requiredMsg("name is required"),
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	mustSet(t, c, name, "ada")
	mustSet(t, c, name, "")

	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	s := c.State()
	wantValue(t, c, name, "ada")
	if r := s.Validation("name"); !r.Valid {
		t.Fatalf("expected the valid verdict restored, got %+v", r)
	}
	if !s.IsDirty("name") {
		t.Fatalf("expected the dirty flag restored")
	}

	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	s = c.State()
	wantValue(t, c, name, "")
	if r := s.Validation("name"); r.Valid || r.Message != "name is required" {
		t.Fatalf("expected the seeded failure restored, got %+v", r)
	}
	if s.IsDirty("name") {
		t.Fatalf("expected the dirty flag cleared at the baseline")
	}
}

func TestHistory_ResetIsOneUndoableStep(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	a := formwork.Field[int]("a")
	b := formwork.Field[int]("b")
	if err := c.Register(
		formwork.FieldConfig[int]{ID: a, Initial: 10}.Any(),
		formwork.FieldConfig[int]{ID: b, Initial: 20}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	mustSet(t, c, a, 1)
	mustSet(t, c, b, 2)

	before := c.HistoryLen()
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := c.HistoryLen(); got != before+1 {
		t.Fatalf("expected one entry for the whole reset, got %d extra", got-before)
	}
	wantValue(t, c, a, 10)
	wantValue(t, c, b, 20)

	if !c.Undo() {
		t.Fatalf("undo failed")
	}
	wantValue(t, c, a, 1)
	wantValue(t, c, b, 2)
}

func TestHistory_NonMutatingOperationsPushNothing(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	name := formwork.Field[string]("name")
	if err := formwork.RegisterField(c, formwork.FieldConfig[string]{
		ID:       name,
		Validate: requiredMsg("name is required"),
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	mustSet(t, c, name, "ada")

	before := c.HistoryLen()
	if err := c.MarkTouched("name"); err != nil {
		t.Fatalf("mark touched: %v", err)
	}
	c.Validate()
	if err := c.SetError("name", "manual"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if got := c.HistoryLen(); got != before {
		t.Fatalf("expected no history from touch/validate/set-error, got %d extra", got-before)
	}
}

// TestHistory_ReregistrationRewritesBaseline re-registers a live field and
// checks that no undoable step appears: registration changes amend the entry
// under the cursor instead of pushing.
func TestHistory_ReregistrationRewritesBaseline(t *testing.T) {
	c, n := newCounterForm(t)
	mustSet(t, c, n, 7)
	before := c.HistoryLen()

	if err := formwork.RegisterField(c, formwork.FieldConfig[int]{ID: n, Initial: 100}); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if got := c.HistoryLen(); got != before {
		t.Fatalf("expected re-registration to push nothing, got %d extra", got-before)
	}
	// The stored value survives the default merge policy.
	wantValue(t, c, n, 7)
	if !c.CanUndo() {
		t.Fatalf("expected the earlier mutation still undoable")
	}
}
