// Package rules provides reusable validators for formwork field configs.
// Every rule returns a closure matching the FieldConfig validator shape:
// "" for a passing value, a localized message otherwise. Messages come from
// the i18n dictionary keyed by the formwork code constants, so switching the
// language with i18n.SetLanguage localizes all built-in rules at once.
package rules

import (
	"cmp"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/i18n"
)

// Required fails for the type's zero value and for empty slices and maps.
func Required[T any]() func(T) string {
	return func(v T) string {
		if isEmpty(v) {
			return i18n.T(formwork.CodeRequired, nil)
		}
		return ""
	}
}

// MinLength requires at least min runes.
func MinLength(min int) func(string) string {
	return func(v string) string {
		if utf8.RuneCountInString(v) < min {
			return i18n.T(formwork.CodeTooShort, map[string]string{"min": strconv.Itoa(min)})
		}
		return ""
	}
}

// MaxLength allows at most max runes.
func MaxLength(max int) func(string) string {
	return func(v string) string {
		if utf8.RuneCountInString(v) > max {
			return i18n.T(formwork.CodeTooLong, map[string]string{"max": strconv.Itoa(max)})
		}
		return ""
	}
}

// Min requires the value to be at least min.
func Min[T cmp.Ordered](min T) func(T) string {
	return func(v T) string {
		if v < min {
			return i18n.T(formwork.CodeTooSmall, map[string]string{"min": fmt.Sprint(min)})
		}
		return ""
	}
}

// Max allows the value to be at most max.
func Max[T cmp.Ordered](max T) func(T) string {
	return func(v T) string {
		if v > max {
			return i18n.T(formwork.CodeTooBig, map[string]string{"max": fmt.Sprint(max)})
		}
		return ""
	}
}

// MinItems requires the slice to hold at least min elements.
func MinItems[T any](min int) func([]T) string {
	return func(v []T) string {
		if len(v) < min {
			return i18n.T(formwork.CodeTooFewItems, map[string]string{"min": strconv.Itoa(min)})
		}
		return ""
	}
}

// MaxItems allows the slice to hold at most max elements.
func MaxItems[T any](max int) func([]T) string {
	return func(v []T) string {
		if len(v) > max {
			return i18n.T(formwork.CodeTooManyItems, map[string]string{"max": strconv.Itoa(max)})
		}
		return ""
	}
}

// Pattern requires the string to match the expression. The expression is
// compiled at construction; an invalid expression panics, as with
// regexp.MustCompile. Empty strings pass so that Pattern composes with
// Required instead of duplicating it.
func Pattern(expr string) func(string) string {
	re := regexp.MustCompile(expr)
	return func(v string) string {
		if v == "" || re.MatchString(v) {
			return ""
		}
		return i18n.T(formwork.CodePattern, nil)
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email performs a pragmatic address shape check. Empty strings pass.
func Email() func(string) string {
	return func(v string) string {
		if v == "" || emailRe.MatchString(v) {
			return ""
		}
		return i18n.T(formwork.CodeInvalidEmail, nil)
	}
}

// OneOf requires the value to be one of the allowed set.
func OneOf[T comparable](allowed ...T) func(T) string {
	return func(v T) string {
		for _, a := range allowed {
			if v == a {
				return ""
			}
		}
		strs := make([]string, len(allowed))
		for i, a := range allowed {
			strs[i] = fmt.Sprint(a)
		}
		return i18n.T(formwork.CodeInvalidEnum, map[string]string{"allowed": strings.Join(strs, ", ")})
	}
}

// Compose runs rules in order and returns the first failure.
func Compose[T any](rules ...func(T) string) func(T) string {
	return func(v T) string {
		for _, r := range rules {
			if r == nil {
				continue
			}
			if msg := r(v); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// When gates a rule behind a predicate on the value itself.
func When[T any](pred func(T) bool, rule func(T) string) func(T) string {
	return func(v T) string {
		if pred == nil || !pred(v) {
			return ""
		}
		return rule(v)
	}
}

// ---- cross-field rules ----

// MatchesField requires the value to equal another field's current value,
// the password-confirmation shape. The message is caller-supplied because no
// generic wording fits every pairing.
func MatchesField[T comparable](other formwork.FieldID[T], message string) func(T, formwork.FormState) string {
	return func(v T, s formwork.FormState) string {
		if o, _ := formwork.ValueOf(s, other); v != o {
			return message
		}
		return ""
	}
}

// RequiredWhen applies Required only while the form predicate holds, for
// fields mandatory in some states of the form only.
func RequiredWhen[T any](pred func(formwork.FormState) bool) func(T, formwork.FormState) string {
	req := Required[T]()
	return func(v T, s formwork.FormState) string {
		if pred == nil || !pred(s) {
			return ""
		}
		return req(v)
	}
}

// CrossWhen gates an arbitrary cross rule behind a form predicate.
func CrossWhen[T any](pred func(formwork.FormState) bool, rule func(T, formwork.FormState) string) func(T, formwork.FormState) string {
	return func(v T, s formwork.FormState) string {
		if pred == nil || !pred(s) {
			return ""
		}
		return rule(v, s)
	}
}

// ---- helpers ----

// isEmpty treats the zero value, nil, and zero-length collections as empty.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
