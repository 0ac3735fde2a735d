package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeadersMiddleware sets the response hardening headers. API
// responses carry tokens and customer addresses, so they are marked
// no-store; paths under cachePrefixes (served POD images) are left cacheable.
// HSTS is only sent when the service sits behind TLS.
func SecurityHeadersMiddleware(hsts bool, cachePrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		if hsts {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		if !hasAnyPrefix(c.Request.URL.Path, cachePrefixes) {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
