package applications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("job application not found")

// Repo persists applications. Lookups and mutations are scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, userID, appID string) (Application, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Application, error)
	// Update applies fn to the stored application atomically and persists the result.
	Update(ctx context.Context, userID, appID string, fn func(*Application) error) (Application, error)
	Delete(ctx context.Context, userID, appID string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	// DeleteByResume removes the caller's applications that reference resumeID.
	DeleteByResume(ctx context.Context, userID, resumeID string) (int, error)
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
}
