// Package codec converts between widget text and typed field values. A Codec
// is the strategy pair a text-based control needs to edit a non-string field:
// Parse turns user input into the field's type, Format renders the stored
// value back. SetText and Text wire a codec to a formwork controller so parse
// failures surface as field validation errors rather than Go errors.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/i18n"
)

// Codec converts between the text representation and the typed value.
// Parse handles arbitrary user input and may fail; Format never fails.
type Codec[T any] interface {
	Parse(text string) (T, error)
	Format(v T) string
}

// SetText parses widget text through the codec and stores the result. A parse
// failure stores nothing and force-sets an invalid-format message on the
// field, so the user sees the problem where they typed it.
func SetText[T any](c *formwork.Controller, id formwork.FieldID[T], cd Codec[T], text string) error {
	v, err := cd.Parse(text)
	if err != nil {
		return c.SetError(id.Key(), i18n.T(formwork.CodeInvalidFormat, nil))
	}
	return formwork.Set(c, id, v)
}

// Text formats the field's current value for display.
func Text[T any](s formwork.FormState, id formwork.FieldID[T], cd Codec[T]) string {
	v, _ := formwork.ValueOf(s, id)
	return cd.Format(v)
}

// String returns the identity codec for string fields.
func String() Codec[string] { return stringCodec{} }

type stringCodec struct{}

func (stringCodec) Parse(text string) (string, error) { return text, nil }
func (stringCodec) Format(v string) string            { return v }

// Int returns a codec for int fields. Surrounding whitespace is tolerated.
func Int() Codec[int] { return intCodec{} }

type intCodec struct{}

func (intCodec) Parse(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("codec: parse int: %w", err)
	}
	return n, nil
}

func (intCodec) Format(v int) string { return strconv.Itoa(v) }

// Float64 returns a codec for float64 fields. Formatting uses the shortest
// representation that round-trips.
func Float64() Codec[float64] { return floatCodec{} }

type floatCodec struct{}

func (floatCodec) Parse(text string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("codec: parse float: %w", err)
	}
	return f, nil
}

func (floatCodec) Format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Bool returns a codec accepting the strconv.ParseBool forms.
func Bool() Codec[bool] { return boolCodec{} }

type boolCodec struct{}

func (boolCodec) Parse(text string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return false, fmt.Errorf("codec: parse bool: %w", err)
	}
	return b, nil
}

func (boolCodec) Format(v bool) string { return strconv.FormatBool(v) }
