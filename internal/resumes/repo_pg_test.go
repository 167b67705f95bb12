package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"jobtracker-backend/internal/analysis"
)

const testResumeID = "3d6f1c52-8b0e-4c43-a1f2-5b7e9d0c4a11"

var resumeCols = []string{"id", "user_id", "file_name", "original_name", "file_path", "file_size", "mime_type", "analysis", "uploaded_at"}

func TestPGRepoCreateEncodesAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	result := analysis.ResumeAnalysis{Summary: "ok", OverallScore: 80}
	resume := Resume{
		ID:           testResumeID,
		UserID:       "user-1",
		FileName:     "abc_cv.pdf",
		OriginalName: "cv.pdf",
		FilePath:     "hash/abc_cv.pdf",
		FileSize:     10,
		MimeType:     mimePDF,
		Analysis:     &result,
		UploadedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(resume.ID, resume.UserID, resume.FileName, resume.OriginalName, resume.FilePath,
			resume.FileSize, resume.MimeType, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), resume); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	raw, _ := json.Marshal(analysis.ResumeAnalysis{Summary: "stored", OverallScore: 77})
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(testResumeID, "user-1").
		WillReturnRows(sqlmock.NewRows(resumeCols).
			AddRow(testResumeID, "user-1", "abc_cv.pdf", "cv.pdf", "k", int64(10), mimePDF, raw, now))
	mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(testResumeID, "user-2").
		WillReturnRows(sqlmock.NewRows(resumeCols))

	got, err := repo.GetByID(context.Background(), "user-1", testResumeID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Analysis == nil || got.Analysis.OverallScore != 77 {
		t.Fatalf("analysis not decoded: %+v", got.Analysis)
	}

	if _, err := repo.GetByID(context.Background(), "user-2", testResumeID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", "bogus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteByUserReturnsRemoved(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	mock.ExpectQuery("DELETE FROM resumes WHERE user_id = \\$1 RETURNING").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(resumeCols).
			AddRow(testResumeID, "user-1", "a.pdf", "a.pdf", "k1", int64(1), mimePDF, nil, now))

	removed, err := repo.DeleteByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if len(removed) != 1 || removed[0].FilePath != "k1" || removed[0].Analysis != nil {
		t.Fatalf("unexpected removed %+v", removed)
	}
}
