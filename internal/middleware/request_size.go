package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/pkg/utils"
)

const (
	DefaultMaxRequestSize = 1 << 20

	// multipartOverhead covers form boundaries and text fields sent next to
	// a proof-of-delivery image.
	multipartOverhead = 1 << 20
)

// RequestSizeLimitMiddleware caps request bodies. JSON bodies get jsonMax.
// Multipart uploads get twice imageMax so that a moderately oversized image
// still reaches the upload handler and is rejected there as a validation
// error; anything larger is cut off with 413.
func RequestSizeLimitMiddleware(jsonMax, imageMax int64) gin.HandlerFunc {
	if jsonMax <= 0 {
		jsonMax = DefaultMaxRequestSize
	}
	uploadMax := 2*imageMax + multipartOverhead
	if uploadMax < jsonMax {
		uploadMax = jsonMax
	}

	return func(c *gin.Context) {
		limit := jsonMax
		if isMultipart(c.Request) {
			limit = uploadMax
		}

		if c.Request.ContentLength > limit {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
