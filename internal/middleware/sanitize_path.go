package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var pathPolicy = bluemonday.StrictPolicy()

// SanitizePath strips markup from the raw request path before routing, so
// injected HTML never reaches a handler or a log line. Signed link tokens
// and uuid parameters carry no markup and pass through unchanged.
func SanitizePath() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.URL.Path = pathPolicy.Sanitize(c.Request.URL.Path)
		c.Next()
	}
}
