package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-site/internal/auctionerrors"
	"auction-site/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the authentication middleware
const (
	IdentityIDKey   = "identity_id"
	IdentityNameKey = "identity_name"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload", "")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, auctionerrors.ErrBidRejected):
		return http.StatusConflict, "bid rejected"
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, auctionerrors.ErrCategoryNotFound):
		return http.StatusNotFound, "category not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrListingClosed):
		return http.StatusConflict, "listing is closed"
	case errors.Is(err, auctionerrors.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable, "listing is busy, try again"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "action not allowed"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username and/or password"
	case errors.Is(err, auctionerrors.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error response and logs it. Server faults are
// logged at error level, client mistakes at warn.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message, auctionerrors.Reason(err))

	logFields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		utils.Error(handlerName+": request failed", logFields)
		return
	}
	utils.Warn(handlerName+": request refused", logFields)
}

// IdentityFromContext returns the authenticated user id, if any
func IdentityFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(IdentityIDKey)
	return id, id != ""
}

// SetIdentity records the authenticated user on the request context
func SetIdentity(c *gin.Context, userID, username string) {
	c.Set(IdentityIDKey, userID)
	c.Set(IdentityNameKey, username)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
