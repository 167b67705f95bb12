package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/account"
	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/auth"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/services/health"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// authRateLimitGroup names the rule applied to the credential endpoints.
const authRateLimitGroup = "AUTH"

// RouterDeps carries the handlers and verifier the router mounts. Accounts
// may be nil, in which case any validly signed token is accepted.
type RouterDeps struct {
	Config             config.Config
	Verifier           middleware.TokenVerifier
	Accounts           middleware.AccountChecker
	AuthHandler        *auth.Handler
	AccountHandler     *account.Handler
	ResumeHandler      *resumes.Handler
	ApplicationHandler *applications.Handler
	Health             *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				authRateLimitGroup: {
					Rate:  deps.Config.AuthRateLimitRPS,
					Burst: deps.Config.AuthRateLimitBurst,
				},
			},
			GroupFor: middleware.AuthRouteGroup,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	requireAuth := middleware.Auth(deps.Verifier, deps.Accounts)

	api := r.Group("/api")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, deps.Config.Env)
	}
	api.GET("/health", func(c *gin.Context) {
		status, ok := healthSvc.Check(c.Request.Context())
		if !ok {
			respond.Fail(c, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
		respond.Message(c, http.StatusOK, "Server is running", status)
	})
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api.Group("/auth"), requireAuth)
	}

	protected := api.Group("", requireAuth)
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(protected)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(protected)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterRoutes(protected)
	}

	r.NoRoute(routeNotFound)
	r.NoMethod(routeNotFound)

	return r
}

func routeNotFound(c *gin.Context) {
	respond.Fail(c, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path), nil)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
