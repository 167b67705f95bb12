// Package health reports process and storage readiness.
package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service checks the configured backing stores.
type Service struct {
	DB  *sql.DB
	Env string
}

// Status is the health payload.
type Status struct {
	Env      string `json:"env"`
	Storage  string `json:"storage"`
	Database string `json:"database,omitempty"`
}

// NewService constructs a health service. database may be nil when repositories are in memory.
func NewService(database *sql.DB, env string) *Service {
	return &Service{DB: database, Env: env}
}

// Check pings the database, if any. ok is false only when a configured database is unreachable.
func (s *Service) Check(ctx context.Context) (Status, bool) {
	if s == nil {
		return Status{Storage: "memory"}, true
	}
	status := Status{Env: s.Env, Storage: "memory"}
	if s.DB == nil {
		return status, true
	}
	status.Storage = "postgres"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		status.Database = "unreachable"
		return status, false
	}
	status.Database = "ok"
	return status, true
}
