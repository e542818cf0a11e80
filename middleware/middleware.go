// Package middleware holds the framework-neutral pieces of the HTTP
// adapters: decoding a JSON submission into a form controller, running the
// submit pipeline, and shuttling the validated document through the request
// context. The echo and gin submodules wrap these helpers for their
// frameworks.
package middleware

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	formwork "github.com/quharo/formwork"
)

// ctxKeyValues is the typed context key for the validated value document.
type ctxKeyValues struct{}

// ContextWithValues attaches a validated nested value document to the
// context.
func ContextWithValues(ctx context.Context, values map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyValues{}, values)
}

// ValuesFromContext retrieves the validated document stored by a form
// validation middleware.
func ValuesFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(ctxKeyValues{}).(map[string]any)
	return v, ok
}

// ErrorPayload shapes a field error map for a JSON error response.
func ErrorPayload(errs map[string]string) map[string]any {
	return map[string]any{"errors": errs}
}

// Apply decodes a JSON request body into the controller and drives a full
// submission: body keys are flattened onto registered fields (unknown keys
// are ignored, the way a server tolerates stale clients), the patched form
// waits for its async validators and validates. On success the nested value
// document is returned; a validation failure returns the field error map
// instead. The third return is reserved for transport problems: unreadable
// bodies, malformed JSON, or a cancelled request context.
func Apply(ctx context.Context, c *formwork.Controller, body io.Reader) (map[string]any, map[string]string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, fmt.Errorf("middleware: read body: %w", err)
	}
	var doc map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, nil, fmt.Errorf("middleware: invalid JSON: %w", err)
		}
	}

	values := make(map[string]any)
	for key, v := range formwork.Flatten(doc) {
		if c.Registered(key) {
			values[key] = c.CoerceValue(key, v)
		}
	}
	if len(values) > 0 {
		if err := c.Patch(values); err != nil {
			return nil, nil, err
		}
	}

	var (
		out       map[string]any
		fieldErrs map[string]string
	)
	err = c.Submit(ctx,
		func(v map[string]any) error {
			out = v
			return nil
		},
		func(e map[string]string) { fieldErrs = e },
	)
	if err != nil {
		return nil, nil, err
	}
	if fieldErrs != nil {
		return nil, fieldErrs, nil
	}
	return out, nil, nil
}
