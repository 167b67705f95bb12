package resumes

import (
	"context"
	"errors"

	"jobtracker-backend/internal/analysis"
)

var ErrNotFound = errors.New("resume not found")

// Repo persists resumes. Every lookup is scoped to the owning user; a resume
// owned by someone else is reported as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, userID, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	UpdateAnalysis(ctx context.Context, userID, resumeID string, result analysis.ResumeAnalysis) (Resume, error)
	Delete(ctx context.Context, userID, resumeID string) error
	// DeleteByUser removes every resume owned by userID and returns what was removed.
	DeleteByUser(ctx context.Context, userID string) ([]Resume, error)
}
