package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

const driverKey = "driver"

func RoleMiddleware(allowed ...authz.Role) gin.HandlerFunc {
	return Authorize(authz.Allow(allowed...), "")
}

func StaffOnly() gin.HandlerFunc {
	return RoleMiddleware(authz.Staff...)
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(authz.RoleAdmin)
}

func DriverOnly() gin.HandlerFunc {
	return RoleMiddleware(authz.RoleDriver)
}

func CustomerOnly() gin.HandlerFunc {
	return RoleMiddleware(authz.RoleCustomer)
}

// Authorize evaluates policy for the caller. idParam names the route
// parameter handed to the policy's ownership predicate; empty means none.
func Authorize(policy authz.Policy, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		var resourceID string
		if idParam != "" {
			resourceID = c.Param(idParam)
		}

		if err := policy.Evaluate(c.Request.Context(), principal, resourceID); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireDriverProfile admits drivers that have a fleet profile and stores
// it for the handler. Staff pass through untouched.
func RequireDriverProfile(drivers fleet.DriverRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}
		if principal.IsStaff() {
			c.Next()
			return
		}
		if principal.Role != authz.RoleDriver {
			abortWithError(c, appErrors.ErrInsufficientPermissions)
			return
		}

		driver, err := drivers.GetByUserID(c.Request.Context(), principal.UserID)
		if err != nil {
			if errors.Is(err, fleet.ErrDriverNotFound) {
				err = fleet.ErrNoDriverProfile
			}
			abortWithError(c, err)
			return
		}
		c.Set(driverKey, driver)
		c.Next()
	}
}

// CurrentDriver returns the profile loaded by RequireDriverProfile.
func CurrentDriver(c *gin.Context) (*fleet.Driver, bool) {
	v, exists := c.Get(driverKey)
	if !exists {
		return nil, false
	}
	d, ok := v.(*fleet.Driver)
	return d, ok
}

func abortWithError(c *gin.Context, err error) {
	status := appErrors.HTTPStatus(err)
	message := "Internal server error"
	if status != http.StatusInternalServerError {
		message = publicMessage(err)
	}
	utils.ErrorResponse(c, status, message)
	c.Abort()
}

func publicMessage(err error) string {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
