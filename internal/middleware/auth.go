package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"logipro/internal/authz"
	"logipro/pkg/utils"
)

const principalKey = "principal"

// AuthMiddleware requires a valid access token and stores the caller as an
// authz.Principal on both the gin and the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(token, secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		role := authz.Role(claims.Role)
		if !role.IsValid() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		principal := authz.Principal{UserID: claims.UserID, Email: claims.Email, Role: role}
		c.Set(principalKey, principal)
		c.Request = c.Request.WithContext(authz.WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}

// CurrentPrincipal returns the caller established by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// BearerToken is exported for handlers that accept a refresh token in the
// Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	return bearerToken(c)
}
