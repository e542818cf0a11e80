package formwork

// AutovalidateMode controls when validation errors become visible.
// Validators always run on mutation regardless of mode; the mode only feeds
// the ShouldShowError decision.
type AutovalidateMode int

const (
	// AutovalidateOnTouch surfaces a field's error once the field has been
	// touched or a submit was attempted. Default.
	AutovalidateOnTouch AutovalidateMode = iota
	// AutovalidateDisabled surfaces errors only around submit attempts.
	AutovalidateDisabled
	// AutovalidateAlways surfaces errors immediately, touched or not.
	AutovalidateAlways
)

// ValidationResult is the immutable outcome of validating a single field.
// The zero value is an invalid result with no message; use OK, Invalid and
// Pending to construct meaningful results.
type ValidationResult struct {
	// Valid reports whether the last settled validation passed. While an
	// async validator is in flight, Valid holds the provisional verdict.
	Valid bool `json:"valid"`
	// Message carries the validation error text; empty when Valid.
	Message string `json:"message,omitempty"`
	// Validating is true while an async validator for the field is in flight.
	Validating bool `json:"validating,omitempty"`
}

// OK returns a passing result.
func OK() ValidationResult { return ValidationResult{Valid: true} }

// Invalid returns a failing result carrying the given message.
func Invalid(message string) ValidationResult { return ValidationResult{Message: message} }

// Pending returns a provisional passing result with Validating set, used
// while an async validator runs.
func Pending() ValidationResult { return ValidationResult{Valid: true, Validating: true} }

// resultOf maps a validator message to a settled result; "" means valid.
func resultOf(msg string) ValidationResult {
	if msg == "" {
		return OK()
	}
	return Invalid(msg)
}

// ShouldShowError reports whether a field's error should be surfaced to the
// user: the result must have settled invalid, and the field must have been
// touched, be part of a submit attempt, or the mode must be
// AutovalidateAlways. Pure function; presentation layers consume it, the
// engine uses it for FirstError.
func ShouldShowError(r ValidationResult, touched, submitting bool, mode AutovalidateMode) bool {
	return !r.Valid && !r.Validating && (touched || submitting || mode == AutovalidateAlways)
}
