package formwork_test

import (
	"testing"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/dsl"
	"github.com/quharo/formwork/formdef"
	"github.com/quharo/formwork/rules"
)

// --- Fixtures for declarative vs builder registration ---

const checkoutYAML = `
name: checkout
fields:
  - key: email
    type: string
    rules:
      - required
      - email
  - key: qty
    type: int
    initial: 1
    rules:
      - name: min
        param: 1
      - name: max
        param: 99
  - key: coupon
    type: string
    rules:
      - name: maxLength
        param: 16
  - key: tags
    type: string[]
    rules:
      - name: maxItems
        param: 5
`

func loadCheckout(tb testing.TB) formdef.Definition {
	tb.Helper()
	def, diag, err := formdef.Load([]byte(checkoutYAML))
	if err != nil {
		tb.Fatalf("load: %v", err)
	}
	if diag.HasWarnings() {
		tb.Fatalf("unexpected warnings: %v", diag.Warnings())
	}
	return def
}

func builderConfigs() []formwork.AnyFieldConfig {
	return dsl.Form().
		Add(
			dsl.Text("email").Required().Rule(rules.Email()).Any(),
			dsl.Int("qty").Initial(1).Rule(rules.Min(1), rules.Max(99)).Any(),
			dsl.Text("coupon").Rule(rules.MaxLength(16)).Any(),
			dsl.SliceOf[string]("tags").Rule(rules.MaxItems[string](5)).Any(),
		).
		Configs()
}

// --- Declarative definitions ---

func Benchmark_Definition_Load(b *testing.B) {
	data := []byte(checkoutYAML)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := formdef.Load(data); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Definition_Compile(b *testing.B) {
	def := loadCheckout(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfgs, _, err := def.Configs()
		if err != nil {
			b.Fatal(err)
		}
		if len(cfgs) != 4 {
			b.Fatalf("expected 4 configs, got %d", len(cfgs))
		}
	}
}

func Benchmark_Definition_Register(b *testing.B) {
	def := loadCheckout(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := formwork.New()
		if _, err := def.Register(c); err != nil {
			b.Fatal(err)
		}
		c.Dispose()
	}
}

// --- Builder counterpart ---

func Benchmark_Builder_Register(b *testing.B) {
	cfgs := builderConfigs()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := formwork.New()
		if err := c.Register(cfgs...); err != nil {
			b.Fatal(err)
		}
		c.Dispose()
	}
}

// --- Derived fields ---

func Benchmark_DeriveChain(b *testing.B) {
	c := formwork.New()
	defer c.Dispose()
	subtotal := formwork.Field[float64]("subtotal")
	tax := formwork.Field[float64]("tax")
	total := formwork.Field[float64]("total")
	err := c.Register(
		formwork.FieldConfig[float64]{ID: subtotal}.Any(),
		formwork.FieldConfig[float64]{
			ID:        tax,
			DependsOn: formwork.KeysOf(subtotal),
			Derive: func(s formwork.FormState) (float64, error) {
				return formwork.ValueOr(s, subtotal, 0) * 0.1, nil
			},
		}.Any(),
		formwork.FieldConfig[float64]{
			ID:        total,
			DependsOn: formwork.KeysOf(tax),
			Derive: func(s formwork.FormState) (float64, error) {
				return formwork.ValueOr(s, subtotal, 0) + formwork.ValueOr(s, tax, 0), nil
			},
		}.Any(),
	)
	if err != nil {
		b.Fatalf("register: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := formwork.Set(c, subtotal, float64(i+1)); err != nil {
			b.Fatal(err)
		}
	}
}
