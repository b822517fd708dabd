package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"auction-site/internal/auctionerrors"
	model "auction-site/internal/models"
	"auction-site/services/auction/helpers"
	"auction-site/utils"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if userID, ok := helpers.IdentityFromContext(c); ok {
		fields["user_id"] = userID
	}
	utils.Info("HTTP Request", fields)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthRequired rejects requests without a valid bearer token
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, auctionerrors.ErrUnauthorized, "authentication required")
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.Warn("AuthRequired: token rejected", map[string]any{"path": c.Request.URL.Path, "error": err.Error()})
			utils.AbortWithError(c, http.StatusUnauthorized, auctionerrors.ErrUnauthorized, "authentication required")
			return
		}
		helpers.SetIdentity(c, user.ID, user.Username)
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is sent and otherwise
// lets the request through anonymously
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				helpers.SetIdentity(c, user.ID, user.Username)
			}
		}
		c.Next()
	}
}
