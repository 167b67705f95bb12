package account

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/analysis"
	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/shared/apperr"
	localstore "jobtracker-backend/internal/shared/storage/object/local"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/users"
)

type fixture struct {
	svc     *Service
	users   *users.MemoryRepo
	resumes *resumes.Service
	apps    *applications.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userRepo := users.NewMemoryRepo()
	resumeSvc := &resumes.Service{
		Store:    localstore.New(t.TempDir()),
		Repo:     resumes.NewMemoryRepo(),
		Analyzer: analysis.NewGenerator(),
	}
	appRepo := applications.NewMemoryRepo()
	return &fixture{
		svc:     NewService(userRepo, resumeSvc.Repo, appRepo, resumeSvc),
		users:   userRepo,
		resumes: resumeSvc,
		apps:    &applications.Service{Repo: appRepo, Resumes: resumeSvc},
	}
}

// seed creates a user with one resume and two applications.
func (f *fixture) seed(t *testing.T, email string) (users.User, resumes.Resume) {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.Create(ctx, users.User{Name: "Test", Email: email, PasswordHash: "x", IsVerified: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	body := []byte("%PDF-1.4 resume")
	res, err := f.resumes.Upload(ctx, user.ID, resumes.Upload{FileName: "cv.pdf", ContentType: "application/pdf", Size: int64(len(body))}, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	for _, company := range []string{"Acme", "Globex"} {
		if _, err := f.apps.Create(ctx, user.ID, applications.CreateInput{ResumeID: res.ID, Company: company, Position: "Engineer"}); err != nil {
			t.Fatalf("create application: %v", err)
		}
	}
	return user, res
}

func TestDeleteAccountCascades(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	f := newFixture(t)
	ctx := context.Background()

	alice, aliceResume := f.seed(t, "alice@example.com")
	bob, _ := f.seed(t, "bob@example.com")

	result, err := f.svc.DeleteAccount(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if result.DeletedResumes != 1 || result.DeletedApplications != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := f.users.GetByID(ctx, alice.ID); err == nil {
		t.Fatalf("user still present")
	}
	if list, _ := f.resumes.List(ctx, alice.ID); len(list) != 0 {
		t.Fatalf("resumes still present: %d", len(list))
	}
	if list, _ := f.apps.List(ctx, alice.ID, applications.ListFilter{}); len(list) != 0 {
		t.Fatalf("applications still present: %d", len(list))
	}
	if _, err := f.resumes.Store.Open(ctx, aliceResume.FilePath); err == nil {
		t.Fatalf("stored file still present")
	}

	if list, _ := f.apps.List(ctx, bob.ID, applications.ListFilter{}); len(list) != 2 {
		t.Fatalf("other user's applications affected: %d", len(list))
	}
	if list, _ := f.resumes.List(ctx, bob.ID); len(list) != 1 {
		t.Fatalf("other user's resumes affected: %d", len(list))
	}
}

func TestDeleteAccountUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.DeleteAccount(context.Background(), "ghost")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAccountUsesTransactionOnPostgres(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	svc := NewService(&users.PGRepo{DB: database}, &resumes.PGRepo{DB: database}, &applications.PGRepo{DB: database}, nil)
	cols := []string{"id", "user_id", "file_name", "original_name", "file_path", "file_size", "mime_type", "analysis", "uploaded_at"}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM job_applications WHERE user_id = \\$1").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("DELETE FROM resumes WHERE user_id = \\$1 RETURNING").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r-1", "user-1", "a_cv.pdf", "cv.pdf", "k/a_cv.pdf", int64(10), "application/pdf", nil, time.Now().UTC()))
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.DeleteAccount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if result.DeletedApplications != 3 || result.DeletedResumes != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestDeleteAccountRollsBackWhenUserMissing(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	svc := NewService(&users.PGRepo{DB: database}, &resumes.PGRepo{DB: database}, &applications.PGRepo{DB: database}, nil)
	cols := []string{"id", "user_id", "file_name", "original_name", "file_path", "file_size", "mime_type", "analysis", "uploaded_at"}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM job_applications").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("DELETE FROM resumes").WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = svc.DeleteAccount(context.Background(), "user-1")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestDeleteAccountHandler(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	alice, _ := f.seed(t, "alice@example.com")

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", alice.ID)
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(r.Group("/api"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Account deleted successfully")) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat, got %d", resp.Code)
	}
}
