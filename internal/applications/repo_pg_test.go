package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const testAppID = "9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d"

var appCols = []string{"id", "user_id", "resume_id", "company", "position", "job_description", "salary", "location", "job_url", "notes", "status", "application_date", "follow_up_date", "updated_at"}

func TestPGRepoListBuildsWhitelistedOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	mock.ExpectQuery("WHERE user_id = \\$1 AND status = \\$2 ORDER BY company ASC, id ASC").
		WithArgs("user-1", "Offer").
		WillReturnRows(sqlmock.NewRows(appCols).
			AddRow(testAppID, "user-1", "r1", "Acme", "Dev", "", "", "", "", "", "Offer", now, nil, now))

	list, err := repo.ListByUser(context.Background(), "user-1", ListFilter{Status: StatusOffer, SortBy: SortCompany, Asc: true})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusOffer || list[0].FollowUpDate != nil {
		t.Fatalf("unexpected list %+v", list)
	}

	mock.ExpectQuery("ORDER BY application_date DESC, id DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(appCols))
	if _, err := repo.ListByUser(context.Background(), "user-1", ListFilter{SortBy: "salary; DROP TABLE users"}); err != nil {
		t.Fatalf("ListByUser default: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM job_applications WHERE id = \\$1 AND user_id = \\$2 FOR UPDATE").
		WithArgs(testAppID, "user-1").
		WillReturnRows(sqlmock.NewRows(appCols).
			AddRow(testAppID, "user-1", "r1", "Acme", "Dev", "", "", "", "", "", "Applied", now, nil, now))
	mock.ExpectExec("UPDATE job_applications SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), "user-1", testAppID, func(app *Application) error {
		app.Status = StatusInterview
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != StatusInterview {
		t.Fatalf("expected Interview, got %s", updated.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(appCols))
	mock.ExpectRollback()

	_, err = repo.Update(context.Background(), "user-2", testAppID, func(app *Application) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM job_applications").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Applied", 2).
			AddRow("Offer", 1))

	counts, err := repo.CountByStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[StatusApplied] != 2 || counts[StatusOffer] != 1 || counts[StatusRejected] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestPGRepoDeleteByResumeScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM job_applications WHERE user_id = \\$1 AND resume_id = \\$2").
		WithArgs("user-1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteByResume(context.Background(), "user-1", "r1")
	if err != nil {
		t.Fatalf("DeleteByResume: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
