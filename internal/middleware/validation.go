package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

// ValidateAndSanitizeStruct binds the request body into a fresh instance of
// the given prototype, strips markup from its string fields and validates it.
// The sanitized payload ends up in the context under SanitizedPayloadKey.
func ValidateAndSanitizeStruct(prototype interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := reflect.New(reflect.TypeOf(prototype).Elem()).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
