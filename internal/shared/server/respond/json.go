package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/apperr"
)

// Envelope is the body shape shared by every JSON response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// JSON writes a success envelope carrying payload as data.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{Success: true, Data: payload})
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Message writes a success envelope with a human readable message and optional data.
func Message(c *gin.Context, status int, message string, payload any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: payload})
}
