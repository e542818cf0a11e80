package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/middleware"
)

// ValidateForm builds a fresh form per request via newForm, runs the JSON
// body through it, and on success stores the validated nested document in
// the request context. A validation failure answers 400 with the field error
// map; a malformed body answers 400 with a single error string.
func ValidateForm(newForm func() (*formwork.Controller, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			form, err := newForm()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
			}
			defer form.Dispose()

			values, fieldErrs, err := middleware.Apply(c.Request().Context(), form, c.Request().Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			if fieldErrs != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(fieldErrs))
			}
			ctx := middleware.ContextWithValues(c.Request().Context(), values)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetValues fetches the validated document from echo.Context.
func GetValues(c echo.Context) (map[string]any, bool) {
	return middleware.ValuesFromContext(c.Request().Context())
}
