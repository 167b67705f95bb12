package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobtracker-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const appColumns = `id, user_id, resume_id, company, position, job_description, salary, location, job_url, notes, status, application_date, follow_up_date, updated_at`

var sortColumns = map[string]string{
	SortApplicationDate: "application_date",
	SortCompany:         "company",
	SortPosition:        "position",
	SortStatus:          "status",
	SortUpdatedAt:       "updated_at",
}

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO job_applications (` + appColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.DB.ExecContext(ctx, query, appArgs(app)...)
	if err != nil {
		return fmt.Errorf("insert job application: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, appID string) (Application, error) {
	if !validID(appID) {
		return Application{}, ErrNotFound
	}
	query := `SELECT ` + appColumns + ` FROM job_applications WHERE id = $1 AND user_id = $2`
	return scanApp(r.DB.QueryRowContext(ctx, query, appID, userID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[SortApplicationDate]
	}
	direction := "DESC"
	if filter.Asc {
		direction = "ASC"
	}

	query := `SELECT ` + appColumns + ` FROM job_applications WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		query += ` AND status = $2`
		args = append(args, string(filter.Status))
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s`, column, direction, direction)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query job applications: %w", err)
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job applications: %w", err)
	}
	return out, nil
}

// Update locks the row for the duration of fn so concurrent updates serialize.
func (r *PGRepo) Update(ctx context.Context, userID, appID string, fn func(*Application) error) (Application, error) {
	if !validID(appID) {
		return Application{}, ErrNotFound
	}
	var updated Application
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `SELECT ` + appColumns + ` FROM job_applications WHERE id = $1 AND user_id = $2 FOR UPDATE`
		app, err := scanApp(tx.QueryRowContext(ctx, query, appID, userID))
		if err != nil {
			return err
		}
		if err := fn(&app); err != nil {
			return err
		}
		const update = `
UPDATE job_applications SET
  resume_id = $3,
  company = $4,
  position = $5,
  job_description = $6,
  salary = $7,
  location = $8,
  job_url = $9,
  notes = $10,
  status = $11,
  application_date = $12,
  follow_up_date = $13,
  updated_at = $14
WHERE id = $1 AND user_id = $2`
		if _, err := tx.ExecContext(ctx, update, appArgs(app)...); err != nil {
			return fmt.Errorf("update job application: %w", err)
		}
		updated = app
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return updated, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, appID string) error {
	if !validID(appID) {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`, appID, userID)
	if err != nil {
		return fmt.Errorf("delete job application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return deleteByUser(ctx, r.DB, userID)
}

// DeleteByUserTx is DeleteByUser inside an existing transaction.
func (r *PGRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID string) (int, error) {
	return deleteByUser(ctx, tx, userID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteByUser(ctx context.Context, ex execer, userID string) (int, error) {
	res, err := ex.ExecContext(ctx, `DELETE FROM job_applications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete job applications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r *PGRepo) DeleteByResume(ctx context.Context, userID, resumeID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_applications WHERE user_id = $1 AND resume_id = $2`, userID, resumeID)
	if err != nil {
		return 0, fmt.Errorf("delete job applications for resume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r *PGRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM job_applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count job applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func appArgs(app Application) []any {
	return []any{
		app.ID,
		app.UserID,
		app.ResumeID,
		app.Company,
		app.Position,
		app.JobDescription,
		app.Salary,
		app.Location,
		app.JobURL,
		app.Notes,
		string(app.Status),
		app.ApplicationDate,
		app.FollowUpDate,
		app.UpdatedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApp(s scanner) (Application, error) {
	var app Application
	var status string
	var followUp sql.NullTime
	err := s.Scan(
		&app.ID,
		&app.UserID,
		&app.ResumeID,
		&app.Company,
		&app.Position,
		&app.JobDescription,
		&app.Salary,
		&app.Location,
		&app.JobURL,
		&app.Notes,
		&status,
		&app.ApplicationDate,
		&followUp,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, fmt.Errorf("scan job application: %w", err)
	}
	app.Status = Status(status)
	app.ApplicationDate = app.ApplicationDate.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()
	if followUp.Valid {
		t := followUp.Time.UTC()
		app.FollowUpDate = &t
	}
	return app, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
