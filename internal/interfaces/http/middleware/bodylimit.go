package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects a declared Content-Length above maxBytes with 413 and caps
// chunked bodies so that reading past the limit fails inside the handler.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.Fail(
				dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", getRequestID(c)))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
