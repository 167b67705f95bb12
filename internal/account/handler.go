package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes expects an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/auth/account", h.deleteAccount)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	result, err := h.Svc.DeleteAccount(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Account deleted successfully", result)
}
