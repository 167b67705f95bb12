package applications

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/apperr"
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

// RegisterRoutes attaches job application routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/job-applications")
	g.GET("/stats/overview", h.stats)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type createRequest struct {
	ResumeID        string  `json:"resume" binding:"required"`
	Company         string  `json:"company" binding:"required,max=200"`
	Position        string  `json:"position" binding:"required,max=200"`
	JobDescription  string  `json:"jobDescription" binding:"max=10000"`
	Salary          string  `json:"salary" binding:"max=100"`
	Location        string  `json:"location" binding:"max=200"`
	JobURL          string  `json:"jobUrl" binding:"omitempty,url"`
	Notes           string  `json:"notes" binding:"max=5000"`
	Status          string  `json:"status" binding:"omitempty,oneof=Applied Interview Offer Rejected Withdrawn"`
	ApplicationDate *string `json:"applicationDate"`
	FollowUpDate    *string `json:"followUpDate"`
}

type updateRequest struct {
	ResumeID        *string `json:"resume"`
	Company         *string `json:"company" binding:"omitempty,max=200"`
	Position        *string `json:"position" binding:"omitempty,max=200"`
	JobDescription  *string `json:"jobDescription" binding:"omitempty,max=10000"`
	Salary          *string `json:"salary" binding:"omitempty,max=100"`
	Location        *string `json:"location" binding:"omitempty,max=200"`
	JobURL          *string `json:"jobUrl" binding:"omitempty,url"`
	Notes           *string `json:"notes" binding:"omitempty,max=5000"`
	Status          *string `json:"status" binding:"omitempty,oneof=Applied Interview Offer Rejected Withdrawn"`
	ApplicationDate *string `json:"applicationDate"`
	FollowUpDate    *string `json:"followUpDate"`
}

type listQuery struct {
	Status string `form:"status"`
	SortBy string `form:"sortBy"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	appDate, followUp, ok := parseDates(c, req.ApplicationDate, req.FollowUpDate)
	if !ok {
		return
	}

	app, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), CreateInput{
		ResumeID:        req.ResumeID,
		Company:         req.Company,
		Position:        req.Position,
		JobDescription:  req.JobDescription,
		Salary:          req.Salary,
		Location:        req.Location,
		JobURL:          req.JobURL,
		Notes:           req.Notes,
		Status:          Status(req.Status),
		ApplicationDate: appDate,
		FollowUpDate:    followUp,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Set(middleware.ApplicationIDKey, app.ID)
	respond.Message(c, http.StatusCreated, "Job application created successfully", app)
}

func (h *Handler) list(c *gin.Context) {
	var q listQuery
	if !respond.BindQuery(c, &q) {
		return
	}
	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), ListFilter{
		Status: Status(strings.TrimSpace(q.Status)),
		SortBy: strings.TrimSpace(q.SortBy),
		Asc:    q.Order == "asc",
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ApplicationIDKey, id)

	app, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ApplicationIDKey, id)

	var req updateRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	appDate, followUp, ok := parseDates(c, req.ApplicationDate, req.FollowUpDate)
	if !ok {
		return
	}

	in := UpdateInput{
		ResumeID:        req.ResumeID,
		Company:         req.Company,
		Position:        req.Position,
		JobDescription:  req.JobDescription,
		Salary:          req.Salary,
		Location:        req.Location,
		JobURL:          req.JobURL,
		Notes:           req.Notes,
		ApplicationDate: appDate,
		FollowUpDate:    followUp,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		in.Status = &status
	}

	app, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Job application updated successfully", app)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ApplicationIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Job application deleted successfully", nil)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, stats)
}

// parseDates accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDates(c *gin.Context, applicationDate, followUpDate *string) (*time.Time, *time.Time, bool) {
	var fields []apperr.FieldError
	appDate, err := parseDate(applicationDate)
	if err != nil {
		fields = append(fields, apperr.FieldError{Path: "applicationDate", Message: "applicationDate must be a valid date"})
	}
	followUp, err := parseDate(followUpDate)
	if err != nil {
		fields = append(fields, apperr.FieldError{Path: "followUpDate", Message: "followUpDate must be a valid date"})
	}
	if len(fields) > 0 {
		respond.Error(c, apperr.Validation(respond.ValidationMessage, fields...))
		return nil, nil, false
	}
	return appDate, followUp, true
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
