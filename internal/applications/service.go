package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
)

// ResumeChecker confirms that a resume belongs to a user.
type ResumeChecker interface {
	Exists(ctx context.Context, userID, resumeID string) (bool, error)
}

// Service contains business logic for job applications.
type Service struct {
	Repo    Repo
	Resumes ResumeChecker
	Now     func() time.Time
}

// CreateInput holds the fields accepted when logging an application.
type CreateInput struct {
	ResumeID        string
	Company         string
	Position        string
	JobDescription  string
	Salary          string
	Location        string
	JobURL          string
	Notes           string
	Status          Status
	ApplicationDate *time.Time
	FollowUpDate    *time.Time
}

// UpdateInput holds a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	ResumeID        *string
	Company         *string
	Position        *string
	JobDescription  *string
	Salary          *string
	Location        *string
	JobURL          *string
	Notes           *string
	Status          *Status
	ApplicationDate *time.Time
	FollowUpDate    *time.Time
}

// Create records a new application against one of the caller's resumes.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Application, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.ResumeID = strings.TrimSpace(in.ResumeID)

	var fields []apperr.FieldError
	if in.ResumeID == "" {
		fields = append(fields, apperr.FieldError{Path: "resume", Message: "resume is required"})
	}
	if in.Company == "" {
		fields = append(fields, apperr.FieldError{Path: "company", Message: "company is required"})
	}
	if in.Position == "" {
		fields = append(fields, apperr.FieldError{Path: "position", Message: "position is required"})
	}
	if in.Status == "" {
		in.Status = StatusApplied
	}
	if !in.Status.Valid() {
		fields = append(fields, statusFieldError())
	}
	if len(fields) > 0 {
		return Application{}, apperr.Validation("Validation failed.", fields...)
	}
	if err := s.checkResume(ctx, userID, in.ResumeID); err != nil {
		return Application{}, err
	}

	now := s.now().UTC()
	app := Application{
		ID:              uuid.NewString(),
		UserID:          userID,
		ResumeID:        in.ResumeID,
		Company:         in.Company,
		Position:        in.Position,
		JobDescription:  in.JobDescription,
		Salary:          in.Salary,
		Location:        in.Location,
		JobURL:          strings.TrimSpace(in.JobURL),
		Notes:           in.Notes,
		Status:          in.Status,
		ApplicationDate: now,
		FollowUpDate:    utcPtr(in.FollowUpDate),
		UpdatedAt:       now,
	}
	if in.ApplicationDate != nil {
		app.ApplicationDate = in.ApplicationDate.UTC()
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, fmt.Errorf("create job application: %w", err)
	}
	metrics.IncApplicationsCreated()
	return app, nil
}

// List returns the caller's applications filtered and ordered by filter.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("Validation failed.", statusFieldError())
	}
	if _, ok := sortColumns[filter.SortBy]; !ok && filter.SortBy != "" {
		return nil, apperr.Validation("Validation failed.", apperr.FieldError{
			Path:    "sortBy",
			Message: "sortBy must be one of: applicationDate, company, position, status, updatedAt",
		})
	}
	list, err := s.Repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return list, nil
}

// Get returns one of the caller's applications.
func (s *Service) Get(ctx context.Context, userID, appID string) (Application, error) {
	app, err := s.Repo.GetByID(ctx, userID, appID)
	if err != nil {
		return Application{}, mapErr(err)
	}
	return app, nil
}

// Update applies a partial update. A new resume must also belong to the caller.
func (s *Service) Update(ctx context.Context, userID, appID string, in UpdateInput) (Application, error) {
	var fields []apperr.FieldError
	if in.Company != nil && strings.TrimSpace(*in.Company) == "" {
		fields = append(fields, apperr.FieldError{Path: "company", Message: "company cannot be empty"})
	}
	if in.Position != nil && strings.TrimSpace(*in.Position) == "" {
		fields = append(fields, apperr.FieldError{Path: "position", Message: "position cannot be empty"})
	}
	if in.ResumeID != nil && strings.TrimSpace(*in.ResumeID) == "" {
		fields = append(fields, apperr.FieldError{Path: "resume", Message: "resume cannot be empty"})
	}
	if in.Status != nil && !in.Status.Valid() {
		fields = append(fields, statusFieldError())
	}
	if len(fields) > 0 {
		return Application{}, apperr.Validation("Validation failed.", fields...)
	}

	app, err := s.Repo.Update(ctx, userID, appID, func(app *Application) error {
		if in.ResumeID != nil {
			resumeID := strings.TrimSpace(*in.ResumeID)
			if resumeID != app.ResumeID {
				if err := s.checkResume(ctx, userID, resumeID); err != nil {
					return err
				}
			}
			app.ResumeID = resumeID
		}
		setString(&app.Company, in.Company, true)
		setString(&app.Position, in.Position, true)
		setString(&app.JobDescription, in.JobDescription, false)
		setString(&app.Salary, in.Salary, false)
		setString(&app.Location, in.Location, false)
		setString(&app.JobURL, in.JobURL, true)
		setString(&app.Notes, in.Notes, false)
		if in.Status != nil {
			app.Status = *in.Status
		}
		if in.ApplicationDate != nil {
			app.ApplicationDate = in.ApplicationDate.UTC()
		}
		if in.FollowUpDate != nil {
			app.FollowUpDate = utcPtr(in.FollowUpDate)
		}
		app.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Application{}, mapErr(err)
	}
	return app, nil
}

// Delete removes one of the caller's applications.
func (s *Service) Delete(ctx context.Context, userID, appID string) error {
	if err := s.Repo.Delete(ctx, userID, appID); err != nil {
		return mapErr(err)
	}
	return nil
}

// DeleteByResume removes the applications that reference a resume being deleted.
func (s *Service) DeleteByResume(ctx context.Context, userID, resumeID string) (int, error) {
	n, err := s.Repo.DeleteByResume(ctx, userID, resumeID)
	if err != nil {
		return 0, fmt.Errorf("delete job applications for resume: %w", err)
	}
	return n, nil
}

// Stats returns totals per status in display order, omitting empty statuses.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	counts, err := s.Repo.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("count job applications: %w", err)
	}
	stats := Stats{ByStatus: make([]StatusCount, 0, len(Statuses))}
	for _, status := range Statuses {
		n := counts[status]
		if n == 0 {
			continue
		}
		stats.Total += n
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: status, Count: n})
	}
	return stats, nil
}

func (s *Service) checkResume(ctx context.Context, userID, resumeID string) error {
	if s.Resumes == nil {
		return nil
	}
	ok, err := s.Resumes.Exists(ctx, userID, resumeID)
	if err != nil {
		return fmt.Errorf("check resume: %w", err)
	}
	if !ok {
		return apperr.NotFound("Resume not found")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Job application not found")
	}
	return err
}

func statusFieldError() apperr.FieldError {
	return apperr.FieldError{
		Path:    "status",
		Message: "status must be one of: Applied, Interview, Offer, Rejected, Withdrawn",
	}
}

func setString(dst *string, src *string, trim bool) {
	if src == nil {
		return
	}
	if trim {
		*dst = strings.TrimSpace(*src)
		return
	}
	*dst = *src
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
