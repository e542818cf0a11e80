package formwork

import "errors"

// Validation message codes (exported consts for IDE completion and type safety
// by convention). Built-in rules attach these codes to the messages they
// produce via i18n; user validators are free to return arbitrary strings.
const (
	CodeRequired      = "required"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooFewItems   = "too_few_items"
	CodeTooManyItems  = "too_many_items"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidFormat = "invalid_format"
	// CodeAsyncFailed marks a field whose async validator returned an
	// infrastructure error rather than a verdict.
	CodeAsyncFailed = "async_failed"
)

// Configuration errors. Validation failures are never surfaced as Go errors;
// these cover API misuse only.
var (
	// ErrEmptyFieldKey is returned by Register when a config carries an empty
	// key.
	ErrEmptyFieldKey = errors.New("formwork: field key must not be empty")
	// ErrFieldNotRegistered is returned when a mutation names a key with no
	// active registration.
	ErrFieldNotRegistered = errors.New("formwork: field is not registered")
	// ErrNotArray is returned by array operations when the stored value is not
	// a slice.
	ErrNotArray = errors.New("formwork: field value is not an array")
	// ErrIndexOutOfRange is returned by array operations addressing an index
	// outside the current bounds.
	ErrIndexOutOfRange = errors.New("formwork: array index out of range")
	// ErrControllerDisposed is returned by mutations on a disposed controller.
	ErrControllerDisposed = errors.New("formwork: controller is disposed")
	// ErrNilSource is returned by Bind when the source controller is nil.
	ErrNilSource = errors.New("formwork: nil source controller")
	// ErrSourceDisposed is returned by Bind when the source controller has
	// already been disposed.
	ErrSourceDisposed = errors.New("formwork: source controller is disposed")
	// ErrSubmitInProgress is returned by Submit when a submission is already
	// running.
	ErrSubmitInProgress = errors.New("formwork: submit already in progress")
)
