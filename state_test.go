package formwork_test

import (
	"reflect"
	"testing"

	json "github.com/goccy/go-json"
	formwork "github.com/quharo/formwork"
)

func TestNested_BuildsTreeFromDottedKeys(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	if err := c.Register(
		formwork.FieldConfig[string]{ID: formwork.Field[string]("user.name"), Initial: "John"}.Any(),
		formwork.FieldConfig[int]{ID: formwork.Field[int]("user.age"), Initial: 30}.Any(),
		formwork.FieldConfig[bool]{ID: formwork.Field[bool]("active"), Initial: true}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := c.State().Nested()
	want := map[string]any{
		"user":   map[string]any{"name": "John", "age": 30},
		"active": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestNested_MapWinsOnCollision registers a scalar leaf next to a deeper
// path under the same segment; the nested map claims the segment.
func TestNested_MapWinsOnCollision(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	if err := c.Register(
		formwork.FieldConfig[string]{ID: formwork.Field[string]("user"), Initial: "scalar"}.Any(),
		formwork.FieldConfig[string]{ID: formwork.Field[string]("user.name"), Initial: "John"}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := c.State().Nested()
	sub, ok := got["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected the map side to win the user segment, got %T", got["user"])
	}
	if sub["name"] != "John" {
		t.Fatalf("expected user.name John, got %v", sub["name"])
	}
}

func TestFlatten_InverseOfNested(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	tags := formwork.Array[string]("tags")
	if err := c.Register(
		formwork.FieldConfig[string]{ID: formwork.Field[string]("user.name"), Initial: "John"}.Any(),
		formwork.FieldConfig[int]{ID: formwork.Field[int]("user.age"), Initial: 30}.Any(),
		formwork.FieldConfig[[]string]{ID: tags.AsField(), Initial: []string{"go", "forms"}}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := formwork.Flatten(c.State().Nested())
	want := map[string]any{
		"user.name": "John",
		"user.age":  30,
		"tags":      []string{"go", "forms"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGroupHelpers_StrictPrefixBoundary(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	if err := c.Register(
		formwork.FieldConfig[string]{ID: formwork.Field[string]("ship.name"), Initial: "Beagle"}.Any(),
		formwork.FieldConfig[string]{
			ID:       formwork.Field[string]("shipping.city"),
			Validate: requiredMsg("city is required"),
		}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.State()
	// "shipping.city" shares the letters but not the dot boundary.
	if got := s.GroupKeys("ship"); len(got) != 1 || got[0] != "ship.name" {
		t.Fatalf("expected [ship.name], got %v", got)
	}
	if !s.IsGroupValid("ship") {
		t.Fatalf("expected the ship group unaffected by shipping.city")
	}
	if s.IsGroupValid("shipping") {
		t.Fatalf("expected the shipping group invalid")
	}
	if s.IsGroupValid("cargo") != true {
		t.Fatalf("expected an empty group to be vacuously valid")
	}

	mustSet(t, c, formwork.Field[string]("ship.name"), "Endeavour")
	s = c.State()
	if !s.IsGroupDirty("ship") || s.IsGroupDirty("shipping") {
		t.Fatalf("expected only the ship group dirty")
	}

	if got := s.Keys(); !reflect.DeepEqual(got, []string{"ship.name", "shipping.city"}) {
		t.Fatalf("expected registration order, got %v", got)
	}
}

func TestValue_NavigatesComposites(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	items := formwork.Array[map[string]any]("order.items")
	if err := c.Register(
		formwork.FieldConfig[[]map[string]any]{ID: items.AsField()}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := formwork.AppendItem(c, items, map[string]any{"sku": "A-1", "qty": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := formwork.AppendItem(c, items, map[string]any{"sku": "B-7", "qty": 5}); err != nil {
		t.Fatalf("append: %v", err)
	}

	s := c.State()
	if v, ok := s.Value("order.items[1].qty"); !ok || v != 5 {
		t.Fatalf("expected qty 5 at index 1, got %v (ok=%v)", v, ok)
	}
	if v, ok := s.Value("order.items[0].sku"); !ok || v != "A-1" {
		t.Fatalf("expected sku A-1 at index 0, got %v (ok=%v)", v, ok)
	}
	if _, ok := s.Value("order.items[9].qty"); ok {
		t.Fatalf("expected out-of-range index to miss")
	}
	if _, ok := s.Value("order.items[x]"); ok {
		t.Fatalf("expected a malformed index to miss")
	}
	if _, ok := s.Value("order.items[0].missing"); ok {
		t.Fatalf("expected an unknown map key to miss")
	}
}

func TestIsFormDirty_TracksAnyField(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	a := formwork.Field[string]("a")
	if err := c.Register(
		formwork.FieldConfig[string]{ID: a, Initial: "x"}.Any(),
		formwork.FieldConfig[string]{ID: formwork.Field[string]("b")}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.State().IsFormDirty() {
		t.Fatalf("expected a pristine form")
	}

	mustSet(t, c, a, "y")
	if !c.State().IsFormDirty() {
		t.Fatalf("expected the form dirty after a change")
	}

	// Returning to the initial value clears the flag.
	mustSet(t, c, a, "x")
	if c.State().IsFormDirty() {
		t.Fatalf("expected the form pristine after reverting")
	}
}

func TestErrorMessages_CollectsSettledFailures(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	if err := c.Register(
		formwork.FieldConfig[string]{ID: formwork.Field[string]("a"), Validate: requiredMsg("a is required")}.Any(),
		formwork.FieldConfig[string]{ID: formwork.Field[string]("b"), Validate: requiredMsg("b is required")}.Any(),
		formwork.FieldConfig[string]{ID: formwork.Field[string]("c"), Initial: "fine"}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := c.State().ErrorMessages()
	want := map[string]string{"a": "a is required", "b": "b is required"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestState_MarshalJSONShape(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	name := formwork.Field[string]("user.name")
	if err := c.Register(
		formwork.FieldConfig[string]{ID: name, Validate: requiredMsg("name is required")}.Any(),
		formwork.FieldConfig[int]{ID: formwork.Field[int]("user.age"), Initial: 30}.Any(),
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	mustSet(t, c, name, "John")
	if err := c.MarkTouched("user.age"); err != nil {
		t.Fatalf("mark touched: %v", err)
	}

	raw, err := json.Marshal(c.State())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Values      map[string]any                       `json:"values"`
		Validations map[string]formwork.ValidationResult `json:"validations"`
		Dirty       []string                             `json:"dirty"`
		Touched     []string                             `json:"touched"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	user, ok := got.Values["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested values, got %v", got.Values)
	}
	if user["name"] != "John" {
		t.Fatalf("expected user.name John, got %v", user["name"])
	}
	if !got.Validations["user.name"].Valid {
		t.Fatalf("expected user.name valid in the serialized form")
	}
	if !reflect.DeepEqual(got.Dirty, []string{"user.name"}) {
		t.Fatalf("expected dirty [user.name], got %v", got.Dirty)
	}
	if !reflect.DeepEqual(got.Touched, []string{"user.age"}) {
		t.Fatalf("expected touched [user.age], got %v", got.Touched)
	}
}
