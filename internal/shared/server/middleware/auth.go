package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/respond"
)

const userIDKey = "userId"

const (
	msgTokenRequired = "Authorization token is required."
	msgTokenInvalid  = "Invalid or expired authorization token."
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AccountChecker reports whether the account a token was issued for still exists.
type AccountChecker interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Auth requires a valid bearer token and stores the caller's user id in context.
// With a non-nil accounts, tokens of deleted accounts are rejected as invalid.
func Auth(verifier TokenVerifier, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Fail(c, http.StatusUnauthorized, msgTokenRequired, nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			respond.Fail(c, http.StatusUnauthorized, msgTokenRequired, nil)
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil || userID == "" {
			respond.Fail(c, http.StatusUnauthorized, msgTokenInvalid, nil)
			return
		}
		if accounts != nil {
			exists, err := accounts.UserExists(c.Request.Context(), userID)
			if err != nil {
				respond.Error(c, err)
				return
			}
			if !exists {
				respond.Fail(c, http.StatusUnauthorized, msgTokenInvalid, nil)
				return
			}
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
