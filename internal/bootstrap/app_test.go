package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/mail"
	"jobtracker-backend/internal/shared/telemetry"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, mail.Email) error { return nil }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:                "test",
		JWTSecret:          "bootstrap-test-secret-0123",
		TokenTTL:           time.Hour,
		ObjectStoreType:    "local",
		LocalStoreDir:      t.TempDir(),
		CORSAllowOrigin:    []string{"http://localhost:5173"},
		AuthRateLimitRPS:   100,
		AuthRateLimitBurst: 100,
	}
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path, contentType string, body io.Reader) (int, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)

	var out map[string]any
	if resp.Body.Len() > 0 {
		if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, resp.Body.String(), err)
		}
	}
	return resp.Code, out
}

func (c *client) json(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	return c.do(method, path, "application/json", strings.NewReader(body))
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	return d
}

func resumeForm(t *testing.T, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="resume"; filename="`+fileName+`"`)
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 end to end"))
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestBuildRejectsMissingSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestEndToEndFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetOutput(io.Discard)()

	app, err := Build(context.Background(), testConfig(t), WithMailer(nopMailer{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	app.AuthService.NewCode = func() string { return "424242" }

	c := &client{t: t, router: app.Router}

	if status, _ := c.json(http.MethodGet, "/api/health", ""); status != http.StatusOK {
		t.Fatalf("health: %d", status)
	}
	if status, body := c.json(http.MethodGet, "/api/nowhere", ""); status != http.StatusNotFound || body["message"] != "Route not found: GET /api/nowhere" {
		t.Fatalf("unknown route: %d %v", status, body)
	}
	if status, _ := c.json(http.MethodGet, "/api/resumes", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	if status, body := c.json(http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"secret1"}`); status != http.StatusOK {
		t.Fatalf("register: %d %v", status, body)
	}
	status, body := c.json(http.MethodPost, "/api/auth/verify-otp", `{"email":"jane@example.com","otp":"424242"}`)
	if status != http.StatusOK {
		t.Fatalf("verify: %d %v", status, body)
	}
	c.token, _ = data(t, body)["token"].(string)
	userID, _ := data(t, body)["_id"].(string)
	if c.token == "" || userID == "" {
		t.Fatalf("no token in %v", body)
	}

	buf, contentType := resumeForm(t, "Jane CV.pdf")
	status, body = c.do(http.MethodPost, "/api/resumes/upload", contentType, buf)
	if status != http.StatusCreated {
		t.Fatalf("upload: %d %v", status, body)
	}
	resumeID, _ := data(t, body)["_id"].(string)
	if resumeID == "" {
		t.Fatalf("no resume id in %v", body)
	}
	if _, ok := data(t, body)["analysis"].(map[string]any); !ok {
		t.Fatalf("expected analysis on upload, got %v", body)
	}

	for _, payload := range []string{
		`{"resume":"` + resumeID + `","company":"Acme","position":"Engineer"}`,
		`{"resume":"` + resumeID + `","company":"Globex","position":"SRE","status":"Interview"}`,
	} {
		if status, body := c.json(http.MethodPost, "/api/job-applications", payload); status != http.StatusCreated {
			t.Fatalf("create application: %d %v", status, body)
		}
	}

	status, body = c.json(http.MethodGet, "/api/job-applications/stats/overview", "")
	if status != http.StatusOK {
		t.Fatalf("stats: %d %v", status, body)
	}
	if total, _ := data(t, body)["total"].(float64); total != 2 {
		t.Fatalf("expected total 2, got %v", body)
	}

	buf, contentType = resumeForm(t, "Old CV.pdf")
	status, body = c.do(http.MethodPost, "/api/resumes/upload", contentType, buf)
	if status != http.StatusCreated {
		t.Fatalf("second upload: %d %v", status, body)
	}
	oldResumeID, _ := data(t, body)["_id"].(string)
	status, body = c.json(http.MethodPost, "/api/job-applications", `{"resume":"`+oldResumeID+`","company":"Initech","position":"Dev"}`)
	if status != http.StatusCreated {
		t.Fatalf("create application on old resume: %d %v", status, body)
	}
	oldAppID, _ := data(t, body)["_id"].(string)
	if status, body := c.json(http.MethodDelete, "/api/resumes/"+oldResumeID, ""); status != http.StatusOK {
		t.Fatalf("delete resume: %d %v", status, body)
	}
	if status, _ := c.json(http.MethodGet, "/api/job-applications/"+oldAppID, ""); status != http.StatusNotFound {
		t.Fatalf("expected application removed with its resume, got %d", status)
	}

	status, body = c.json(http.MethodDelete, "/api/auth/account", "")
	if status != http.StatusOK {
		t.Fatalf("delete account: %d %v", status, body)
	}
	d := data(t, body)
	if d["deletedResumes"] != float64(1) || d["deletedApplications"] != float64(2) {
		t.Fatalf("unexpected delete result %v", d)
	}

	if status, _ := c.json(http.MethodGet, "/api/auth/me", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", status)
	}
	buf, contentType = resumeForm(t, "Jane CV.pdf")
	if status, body := c.do(http.MethodPost, "/api/resumes/upload", contentType, buf); status != http.StatusUnauthorized || body["message"] != "Invalid or expired authorization token." {
		t.Fatalf("expected 401 upload after delete, got %d %v", status, body)
	}
	if status, _ := c.json(http.MethodPost, "/api/job-applications", `{"resume":"`+resumeID+`","company":"Acme","position":"Engineer"}`); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 application after delete, got %d", status)
	}
	if left, err := app.ResumesRepo.ListByUser(context.Background(), userID); err != nil || len(left) != 0 {
		t.Fatalf("deleted user still owns resumes: %v %v", left, err)
	}
	c.token = ""
	if status, _ := c.json(http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"secret1"}`); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 login after delete, got %d", status)
	}
}
