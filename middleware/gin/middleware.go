package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/middleware"
)

// ValidateForm builds a fresh form per request via newForm, runs the JSON
// body through it, and on success stores the validated nested document in
// the request context before calling the next handler. A validation failure
// aborts with 400 and the field error map.
func ValidateForm(newForm func() (*formwork.Controller, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := newForm()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		defer form.Dispose()

		values, fieldErrs, err := middleware.Apply(c.Request.Context(), form, c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if fieldErrs != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(fieldErrs))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValues(c.Request.Context(), values))
		c.Next()
	}
}

// GetValues fetches the validated document from gin.Context.
func GetValues(c *gin.Context) (map[string]any, bool) {
	return middleware.ValuesFromContext(c.Request.Context())
}
