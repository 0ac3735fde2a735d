package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"logipro/internal/authz"
	"logipro/internal/logger"
	"logipro/internal/middleware"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

// respondWithError writes the error envelope. Anything that maps to 500 is
// logged with the request id and answered with a generic message.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status := appErrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, status, "Internal server error")
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		utils.ErrorResponse(c, status, appErr.Message)
		return
	}
	utils.ErrorResponse(c, status, err.Error())
}

func principal(c *gin.Context) (authz.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
	}
	return p, ok
}

// optionalPrincipal reads a bearer token on public routes without requiring
// one. An invalid token is treated as anonymous.
func optionalPrincipal(c *gin.Context, secret string) *authz.Principal {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return nil
	}
	claims, err := utils.ValidateAccessToken(token, secret)
	if err != nil {
		return nil
	}
	return &authz.Principal{UserID: claims.UserID, Email: claims.Email, Role: authz.Role(claims.Role)}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return false
	}
	return true
}
