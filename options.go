package formwork

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithHistoryCapacity bounds the undo/redo buffer. Values below one are
// ignored and the default of DefaultHistoryCapacity entries applies.
func WithHistoryCapacity(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

// WithAutovalidate sets the display mode consumed by ShouldShowError.
func WithAutovalidate(mode AutovalidateMode) Option {
	return func(c *Controller) { c.autovalidate = mode }
}

// WithFocusRequester installs the callback FocusFirstError uses to move focus
// in the presentation layer.
func WithFocusRequester(fn func(key string)) Option {
	return func(c *Controller) { c.focusRequester = fn }
}

// WithDiagnostic installs a hook for non-fatal internal failures: panicking
// or erroring derive/transform callbacks and async infrastructure errors.
// Validation messages never pass through here.
func WithDiagnostic(fn func(key string, err error)) Option {
	return func(c *Controller) { c.diagnostic = fn }
}
