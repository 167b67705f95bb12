package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/analysis"
	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/storage/object"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/shared/util"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 5 << 20

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var extensionTypes = map[string]string{
	".pdf":  mimePDF,
	".doc":  mimeDOC,
	".docx": mimeDOCX,
}

// Analyzer produces the analysis stored on a resume.
type Analyzer interface {
	Analyze(fileName string) analysis.ResumeAnalysis
}

// Dependents removes records that reference a resume.
type Dependents interface {
	DeleteByResume(ctx context.Context, userID, resumeID string) (int, error)
}

// Service contains business logic for resumes.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Analyzer Analyzer
	// Dependents, when set, is cleared before a resume is deleted.
	Dependents Dependents
	Now        func() time.Time
}

// Upload validates the file, stores it, and records the resume with a fresh analysis.
func (s *Service) Upload(ctx context.Context, userID string, up Upload, r io.Reader) (Resume, error) {
	name := strings.TrimSpace(up.FileName)
	if name == "" {
		return Resume{}, apperr.Validation("Please upload a resume file",
			apperr.FieldError{Path: "resume", Message: "resume file is required"})
	}
	mimeType, ok := resolveMimeType(name, up.ContentType)
	if !ok {
		return Resume{}, apperr.Validation("Only PDF, DOC, and DOCX files are allowed",
			apperr.FieldError{Path: "resume", Message: "unsupported file type"})
	}
	if up.Size > MaxFileSize {
		return Resume{}, apperr.Validation("File size must not exceed 5MB",
			apperr.FieldError{Path: "resume", Message: "file too large"})
	}
	if _, err := util.SanitizeFileName(name); err != nil {
		return Resume{}, apperr.Validation("Invalid file name",
			apperr.FieldError{Path: "resume", Message: err.Error()})
	}

	// Read one byte past the limit so an understated header size is still caught.
	limited := io.LimitReader(r, MaxFileSize+1)
	stored, err := s.Store.Save(ctx, userID, name, limited)
	if err != nil {
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}
	if stored.Size == 0 || stored.Size > MaxFileSize {
		s.removeFile(ctx, stored.Key)
		if stored.Size == 0 {
			return Resume{}, apperr.Validation("Uploaded file is empty",
				apperr.FieldError{Path: "resume", Message: "file is empty"})
		}
		return Resume{}, apperr.Validation("File size must not exceed 5MB",
			apperr.FieldError{Path: "resume", Message: "file too large"})
	}

	result := s.Analyzer.Analyze(name)
	resume := Resume{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     path.Base(stored.Key),
		OriginalName: name,
		FilePath:     stored.Key,
		FileSize:     stored.Size,
		MimeType:     mimeType,
		Analysis:     &result,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		s.removeFile(ctx, stored.Key)
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}
	metrics.IncResumesUploaded()
	return resume, nil
}

// List returns the caller's resumes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return list, nil
}

// Get returns one of the caller's resumes.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	res, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, mapErr(err)
	}
	return res, nil
}

// Exists reports whether resumeID belongs to userID.
func (s *Service) Exists(ctx context.Context, userID, resumeID string) (bool, error) {
	_, err := s.Repo.GetByID(ctx, userID, resumeID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the applications that reference the resume, the resume record
// and then its stored file.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	res, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return mapErr(err)
	}
	if s.Dependents != nil {
		n, err := s.Dependents.DeleteByResume(ctx, userID, resumeID)
		if err != nil {
			return err
		}
		if n > 0 {
			telemetry.Info("resume.applications_removed", map[string]any{
				"user_id":      userID,
				"resume_id":    resumeID,
				"applications": n,
			})
		}
	}
	if err := s.Repo.Delete(ctx, userID, resumeID); err != nil {
		return mapErr(err)
	}
	s.removeFile(ctx, res.FilePath)
	return nil
}

// Reanalyze replaces the stored analysis with a newly generated one.
func (s *Service) Reanalyze(ctx context.Context, userID, resumeID string) (Resume, error) {
	res, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, mapErr(err)
	}
	updated, err := s.Repo.UpdateAnalysis(ctx, userID, resumeID, s.Analyzer.Analyze(res.OriginalName))
	if err != nil {
		return Resume{}, mapErr(err)
	}
	return updated, nil
}

// RemoveFiles deletes the stored files of already-deleted resumes. Failures are logged.
func (s *Service) RemoveFiles(ctx context.Context, removed []Resume) {
	for _, res := range removed {
		s.removeFile(ctx, res.FilePath)
	}
}

func (s *Service) removeFile(ctx context.Context, storageKey string) {
	if storageKey == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Warn("resume.file_delete_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Resume not found")
	}
	return err
}

// resolveMimeType accepts a file when either its declared content type or its
// extension names an allowed format.
func resolveMimeType(fileName, declared string) (string, bool) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		switch mt {
		case mimePDF, mimeDOC, mimeDOCX:
			return mt, true
		}
	}
	mt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]
	return mt, ok
}
