package config

import (
	"strings"
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("PORT", "5000")
	t.Setenv("FRONTEND_URL", "http://localhost:5173")
	t.Setenv("JWT_EXPIRES_IN", "7d")
	t.Setenv("ENV", "development")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d ttl, got %s", cfg.TokenTTL)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev-like env")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadReportsAllInvalidFields(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("FRONTEND_URL", "localhost")
	t.Setenv("JWT_EXPIRES_IN", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"PORT", "JWT_SECRET", "FRONTEND_URL", "JWT_EXPIRES_IN"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}

func TestLoadMergesOrigins(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CORS_ALLOW_ORIGINS", "https://app.example.com, http://localhost:5173/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSAllowOrigin) != 2 {
		t.Fatalf("expected 2 deduplicated origins, got %v", cfg.CORSAllowOrigin)
	}
}

func TestS3RequiresBucket(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OBJECT_STORE", "s3")
	t.Setenv("S3_BUCKET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "S3_BUCKET") {
		t.Fatalf("expected S3_BUCKET error, got %v", err)
	}
}

func TestParseLifetime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "7d", want: 7 * 24 * time.Hour},
		{raw: "12h", want: 12 * time.Hour},
		{raw: "90m", want: 90 * time.Minute},
		{raw: "0d", wantErr: true},
		{raw: "-1h", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "week", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLifetime(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLifetime(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLifetime(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}
