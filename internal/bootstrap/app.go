// Package bootstrap builds the application graph from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/account"
	"jobtracker-backend/internal/analysis"
	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/auth"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/services/health"
	sharedauth "jobtracker-backend/internal/shared/auth"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/mail"
	"jobtracker-backend/internal/shared/server"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/shared/storage/object"
	localstore "jobtracker-backend/internal/shared/storage/object/local"
	s3store "jobtracker-backend/internal/shared/storage/object/s3"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Mailer mail.Sender
	Tokens *sharedauth.TokenSigner

	UsersRepo        users.Repo
	ResumesRepo      resumes.Repo
	ApplicationsRepo applications.Repo

	AuthService        *auth.Service
	ResumeService      *resumes.Service
	ApplicationService *applications.Service
	AccountService     *account.Service
}

// Option adjusts the App before services are wired.
type Option func(*App)

// WithMailer replaces the configured mail sender.
func WithMailer(sender mail.Sender) Option {
	return func(a *App) { a.Mailer = sender }
}

// WithStore replaces the configured object store.
func WithStore(store object.ObjectStore) Option {
	return func(a *App) { a.Store = store }
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.MongoURI) != "" {
		telemetry.Info("bootstrap.mongodb_uri_ignored", map[string]any{
			"reason": "document store not used; set DATABASE_URL for persistence",
		})
	}

	signer, err := sharedauth.NewTokenSigner(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}

	app := &App{Config: cfg, Tokens: signer}
	for _, opt := range opts {
		opt(app)
	}

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Store == nil {
		if app.Store, err = buildStore(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if app.Mailer == nil {
		if app.Mailer, err = buildMailer(cfg); err != nil {
			return nil, err
		}
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Verifier:           signer,
		Accounts:           app.AuthService,
		AuthHandler:        auth.NewHandler(app.AuthService),
		AccountHandler:     account.NewHandler(app.AccountService),
		ResumeHandler:      resumes.NewHandler(app.ResumeService),
		ApplicationHandler: applications.NewHandler(app.ApplicationService),
		Health:             health.NewService(app.DB, cfg.Env),
	})
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required in %s", cfg.Env)
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildMailer(cfg config.Config) (mail.Sender, error) {
	smtp := mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	if !smtp.Enabled() {
		telemetry.Info("bootstrap.mail_logging_only", map[string]any{"reason": "SMTP not configured"})
		return mail.LogSender{}, nil
	}
	return mail.NewSMTPSender(smtp)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
	}

	app.AuthService = &auth.Service{
		Users:  app.UsersRepo,
		Tokens: app.Tokens,
		Mailer: app.Mailer,
	}
	app.ResumeService = &resumes.Service{
		Store:    app.Store,
		Repo:     app.ResumesRepo,
		Analyzer: analysis.NewGenerator(),
	}
	app.ApplicationService = &applications.Service{
		Repo:    app.ApplicationsRepo,
		Resumes: app.ResumeService,
	}
	app.ResumeService.Dependents = app.ApplicationService
	app.AccountService = account.NewService(app.UsersRepo, app.ResumesRepo, app.ApplicationsRepo, app.ResumeService)
}
