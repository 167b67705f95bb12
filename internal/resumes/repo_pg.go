package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobtracker-backend/internal/analysis"
)

// PGRepo implements Repo using Postgres. The analysis is stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const resumeColumns = `id, user_id, file_name, original_name, file_path, file_size, mime_type, analysis, uploaded_at`

func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	raw, err := marshalAnalysis(resume.Analysis)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO resumes (id, user_id, file_name, original_name, file_path, file_size, mime_type, analysis, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.FileName,
		resume.OriginalName,
		resume.FilePath,
		resume.FileSize,
		resume.MimeType,
		raw,
		resume.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	if !validID(resumeID) {
		return Resume{}, ErrNotFound
	}
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 AND user_id = $2`
	return scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 ORDER BY uploaded_at DESC, id DESC`
	return listResumes(ctx, r.DB, query, userID)
}

func (r *PGRepo) UpdateAnalysis(ctx context.Context, userID, resumeID string, result analysis.ResumeAnalysis) (Resume, error) {
	if !validID(resumeID) {
		return Resume{}, ErrNotFound
	}
	raw, err := marshalAnalysis(&result)
	if err != nil {
		return Resume{}, err
	}
	query := `UPDATE resumes SET analysis = $3 WHERE id = $1 AND user_id = $2 RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID, raw))
}

func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	if !validID(resumeID) {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, resumeID, userID)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) ([]Resume, error) {
	return deleteByUser(ctx, r.DB, userID)
}

// DeleteByUserTx is DeleteByUser inside an existing transaction.
func (r *PGRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID string) ([]Resume, error) {
	return deleteByUser(ctx, tx, userID)
}

func deleteByUser(ctx context.Context, q queryer, userID string) ([]Resume, error) {
	query := `DELETE FROM resumes WHERE user_id = $1 RETURNING ` + resumeColumns
	return listResumes(ctx, q, query, userID)
}

func listResumes(ctx context.Context, q queryer, query string, args ...any) ([]Resume, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resumes: %w", err)
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resumes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(s scanner) (Resume, error) {
	var res Resume
	var raw []byte
	err := s.Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.OriginalName,
		&res.FilePath,
		&res.FileSize,
		&res.MimeType,
		&raw,
		&res.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, fmt.Errorf("scan resume: %w", err)
	}
	if len(raw) > 0 && string(raw) != "null" {
		var result analysis.ResumeAnalysis
		if err := json.Unmarshal(raw, &result); err != nil {
			return Resume{}, fmt.Errorf("decode analysis: %w", err)
		}
		res.Analysis = &result
	}
	res.UploadedAt = res.UploadedAt.UTC()
	return res, nil
}

func marshalAnalysis(a *analysis.ResumeAnalysis) (any, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	return raw, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
