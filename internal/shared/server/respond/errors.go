package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/telemetry"
)

// StatusFor maps an error kind to its HTTP status. Ownership mismatches are
// reported as not found so resource existence is not disclosed.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization, apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error classifies err and writes the matching failure envelope.
// Unclassified errors are logged and rendered with a generic message.
func Error(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	status := StatusFor(appErr.Kind)
	message := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		message = "Internal server error."
	}

	fields := map[string]any{
		"status":     status,
		"kind":       appErr.Kind.String(),
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if err != nil && appErr.Kind == apperr.KindInternal {
		fields["error"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	Fail(c, status, message, appErr.Fields)
}

// Fail aborts the request with a failure envelope.
func Fail(c *gin.Context, status int, message string, fieldErrors []apperr.FieldError) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	})
}
