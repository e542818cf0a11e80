package formwork_test

import (
	"testing"

	formwork "github.com/quharo/formwork"
)

func TestFieldID_KeyAndString(t *testing.T) {
	id := formwork.Field[string]("user.email")
	if id.Key() != "user.email" {
		t.Fatalf("expected key user.email, got %q", id.Key())
	}
	if id.String() != "user.email" {
		t.Fatalf("expected String to return the key, got %q", id.String())
	}
}

func TestField_PanicsOnEmptyKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for empty key")
		}
	}()
	formwork.Field[string]("")
}

func TestFieldID_ParentKey(t *testing.T) {
	cases := []struct {
		key    string
		parent string
		ok     bool
	}{
		{"user.address.city", "user.address", true},
		{"user.email", "user", true},
		{"email", "", false},
		// Parent splitting is pure dot-based; bracket segments stay intact.
		{"items[2].qty", "items[2]", true},
		{"items[2]", "", false},
	}
	for _, tc := range cases {
		got, ok := formwork.Field[string](tc.key).ParentKey()
		if ok != tc.ok || got != tc.parent {
			t.Fatalf("ParentKey(%q): expected (%q, %v), got (%q, %v)", tc.key, tc.parent, tc.ok, got, ok)
		}
	}
}

func TestFieldID_LocalName(t *testing.T) {
	if got := formwork.Field[int]("user.age").LocalName(); got != "age" {
		t.Fatalf("expected local name age, got %q", got)
	}
	if got := formwork.Field[int]("age").LocalName(); got != "age" {
		t.Fatalf("expected local name age for root key, got %q", got)
	}
	if got := formwork.Field[int]("order.items[2]").LocalName(); got != "items[2]" {
		t.Fatalf("expected bracket segment kept in local name, got %q", got)
	}
}

func TestFieldID_WithPrefix(t *testing.T) {
	id := formwork.Field[string]("name").WithPrefix("shipping")
	if id.Key() != "shipping.name" {
		t.Fatalf("expected shipping.name, got %q", id.Key())
	}
	same := formwork.Field[string]("name").WithPrefix("")
	if same.Key() != "name" {
		t.Fatalf("expected empty prefix to keep the key, got %q", same.Key())
	}
}

func TestArrayID_ItemKeys(t *testing.T) {
	items := formwork.Array[string]("tags")
	if got := items.Item(0).Key(); got != "tags[0]" {
		t.Fatalf("expected tags[0], got %q", got)
	}
	if got := items.Item(12).Key(); got != "tags[12]" {
		t.Fatalf("expected tags[12], got %q", got)
	}
	if got := items.AsField().Key(); got != "tags" {
		t.Fatalf("expected composite key tags, got %q", got)
	}
	if got := items.WithPrefix("post").Item(1).Key(); got != "post.tags[1]" {
		t.Fatalf("expected post.tags[1], got %q", got)
	}
}

func TestKeysOf_MixesFieldAndArrayIDs(t *testing.T) {
	got := formwork.KeysOf(
		formwork.Field[string]("a"),
		formwork.Array[int]("b"),
		formwork.Field[bool]("c.d"),
	)
	want := []string{"a", "b", "c.d"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected key %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestValueOf_TypeChecked(t *testing.T) {
	c := formwork.New()
	defer c.Dispose()
	age := formwork.Field[int]("age")
	if err := formwork.RegisterField(c, formwork.FieldConfig[int]{ID: age, Initial: 30}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.State()
	if v, ok := formwork.ValueOf(s, age); !ok || v != 30 {
		t.Fatalf("expected (30, true), got (%d, %v)", v, ok)
	}
	// Reading through a mistyped ID reports ok=false instead of panicking.
	if _, ok := formwork.ValueOf(s, formwork.Field[string]("age")); ok {
		t.Fatalf("expected mistyped read to fail")
	}
	if _, ok := formwork.ValueOf(s, formwork.Field[int]("missing")); ok {
		t.Fatalf("expected missing key to fail")
	}
	if v := formwork.ValueOr(s, formwork.Field[int]("missing"), 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}
