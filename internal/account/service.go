// Package account implements deleting an account together with everything it owns.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/users"
)

// FileRemover deletes the stored files of removed resumes.
type FileRemover interface {
	RemoveFiles(ctx context.Context, removed []resumes.Resume)
}

// Service removes a user with their applications, resumes and files.
type Service struct {
	Users        users.Repo
	Resumes      resumes.Repo
	Applications applications.Repo
	Files        FileRemover
}

// DeleteResult reports how many owned records were removed.
type DeleteResult struct {
	DeletedResumes      int `json:"deletedResumes"`
	DeletedApplications int `json:"deletedApplications"`
}

// NewService constructs a Service.
func NewService(userRepo users.Repo, resumeRepo resumes.Repo, appRepo applications.Repo, files FileRemover) *Service {
	return &Service{Users: userRepo, Resumes: resumeRepo, Applications: appRepo, Files: files}
}

// DeleteAccount removes the user's applications, then resumes, then the user.
// Stored files are removed only after the records are gone.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (DeleteResult, error) {
	var (
		removed []resumes.Resume
		apps    int
		err     error
	)
	if database := s.sharedDB(); database != nil {
		removed, apps, err = s.deleteWithTx(ctx, database, userID)
	} else {
		removed, apps, err = s.deleteSequential(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return DeleteResult{}, apperr.NotFound("User not found")
		}
		return DeleteResult{}, err
	}

	if s.Files != nil {
		s.Files.RemoveFiles(ctx, removed)
	}
	metrics.IncAccountsDeleted()
	telemetry.Info("account.deleted", map[string]any{
		"user_id":              userID,
		"deleted_resumes":      len(removed),
		"deleted_applications": apps,
	})
	return DeleteResult{DeletedResumes: len(removed), DeletedApplications: apps}, nil
}

// sharedDB returns the database when all three repos are Postgres-backed on the same pool.
func (s *Service) sharedDB() *sql.DB {
	userPG, ok := s.Users.(*users.PGRepo)
	if !ok || userPG == nil || userPG.DB == nil {
		return nil
	}
	resumePG, ok := s.Resumes.(*resumes.PGRepo)
	if !ok || resumePG == nil || resumePG.DB != userPG.DB {
		return nil
	}
	appPG, ok := s.Applications.(*applications.PGRepo)
	if !ok || appPG == nil || appPG.DB != userPG.DB {
		return nil
	}
	return userPG.DB
}

func (s *Service) deleteWithTx(ctx context.Context, database *sql.DB, userID string) ([]resumes.Resume, int, error) {
	var (
		removed []resumes.Resume
		apps    int
	)
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		apps, err = (&applications.PGRepo{DB: database}).DeleteByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		removed, err = (&resumes.PGRepo{DB: database}).DeleteByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		return (&users.PGRepo{DB: database}).DeleteTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, 0, err
	}
	return removed, apps, nil
}

func (s *Service) deleteSequential(ctx context.Context, userID string) ([]resumes.Resume, int, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	apps, err := s.Applications.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("delete applications: %w", err)
	}
	removed, err := s.Resumes.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("delete resumes: %w", err)
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return nil, 0, err
	}
	return removed, apps, nil
}
