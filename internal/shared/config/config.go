package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinJWTSecretLength mirrors the signer's minimum so startup fails before any request.
const MinJWTSecretLength = 16

// Config holds application configuration.
type Config struct {
	Env             string   `env:"ENV" envDefault:"dev"`
	Port            string   `env:"PORT" envDefault:"5000"`
	JWTSecret       string   `env:"JWT_SECRET"`
	JWTExpiresIn    string   `env:"JWT_EXPIRES_IN" envDefault:"7d"`
	FrontendURL     string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	DatabaseURL     string   `env:"DATABASE_URL"`
	MongoURI        string   `env:"MONGODB_URI"`
	ObjectStoreType string   `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string   `env:"LOCAL_STORE_DIR" envDefault:"./uploads"`
	AWSRegion       string   `env:"AWS_REGION"`
	S3Bucket        string   `env:"S3_BUCKET"`
	S3Prefix        string   `env:"S3_PREFIX"`
	SSEKMSKeyID     string   `env:"SSE_KMS_KEY_ID"`
	SMTPHost        string   `env:"SMTP_HOST"`
	SMTPPort        int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string   `env:"SMTP_USERNAME"`
	SMTPPassword    string   `env:"SMTP_PASSWORD"`
	SMTPFrom        string   `env:"SMTP_FROM"`

	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"5"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`

	// TokenTTL is derived from JWTExpiresIn.
	TokenTTL time.Duration `env:"-"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.Port = strings.TrimSpace(c.Port)
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.FrontendURL = strings.TrimRight(strings.TrimSpace(c.FrontendURL), "/")
	c.CORSAllowOrigin = mergeOrigins(c.FrontendURL, c.CORSAllowOrigin)
	if ttl, err := ParseLifetime(c.JWTExpiresIn); err == nil {
		c.TokenTTL = ttl
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":")); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port number, got %q", c.Port))
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters long", MinJWTSecretLength))
	}
	if _, err := ParseLifetime(c.JWTExpiresIn); err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN: %w", err))
	}
	if u, err := url.Parse(c.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("FRONTEND_URL must be an absolute URL, got %q", c.FrontendURL))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
	}
	if c.AuthRateLimitRPS < 0 || c.AuthRateLimitBurst < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must not be negative"))
	}

	return errors.Join(errs...)
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

// ParseLifetime accepts Go durations ("12h") and whole days ("7d").
func ParseLifetime(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("lifetime is empty")
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %q", raw)
	}
	return d, nil
}

func mergeOrigins(frontend string, extra []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range append([]string{frontend}, extra...) {
		trimmed := strings.TrimRight(strings.TrimSpace(o), "/")
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
