package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the auth routes to rg, which is mounted at /auth.
// requireAuth guards the routes that need a session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/register", h.register)
	rg.POST("/verify-otp", h.verifyOTP)
	rg.POST("/resend-otp", h.resendOTP)
	rg.POST("/login", h.login)
	rg.GET("/me", requireAuth, h.me)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK,
		"Registration successful. Please verify your email with the OTP sent.",
		gin.H{"email": user.Email})
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req verifyRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	user, token, err := h.Svc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Email verified successfully", user.Public(token))
}

func (h *Handler) resendOTP(c *gin.Context) {
	var req emailRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "OTP resent successfully", nil)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	user, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Login successful", user.Public(token))
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.Me(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, user.Public(""))
}
