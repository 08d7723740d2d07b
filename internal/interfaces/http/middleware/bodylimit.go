package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/handwerk/backoffice/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes with 413.
// A non-positive maxBytes disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		// chunked bodies carry no length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
