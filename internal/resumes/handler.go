package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for boundaries and part headers on top of MaxFileSize.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/upload", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/reanalyze", h.reanalyze)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+multipartOverhead)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, apperr.Validation("File size must not exceed 5MB",
				apperr.FieldError{Path: "resume", Message: "file too large"}))
			return
		}
		respond.Error(c, apperr.Validation("Please upload a resume file",
			apperr.FieldError{Path: "resume", Message: "resume file is required"}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, apperr.Validation("Unable to read uploaded file"))
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), userID, Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}, file)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Set(middleware.ResumeIDKey, res.ID)
	respond.Message(c, http.StatusCreated, "Resume uploaded and analyzed successfully", res)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Resume deleted successfully", nil)
}

func (h *Handler) reanalyze(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	res, err := h.Svc.Reanalyze(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Resume re-analyzed successfully", res)
}
