package procedures

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"procedure-backend/internal/quality"
)

// PGRepo implements Repo using Postgres. The analysis is stored verbatim as JSONB.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, title, department, owner_id, file_name, mime_type, size_bytes, storage_provider, storage_key, content_sha256, status, score, analysis, created_at`

func (r *PGRepo) Create(ctx context.Context, p Procedure) error {
	const query = `
INSERT INTO procedures (
    id,
    title,
    department,
    owner_id,
    file_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    content_sha256,
    status,
    score,
    risk_rating,
    analysis,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	analysis, err := json.Marshal(p.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	var riskRating sql.NullString
	if rating := p.RiskRating(); rating != "" {
		riskRating = sql.NullString{String: rating, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		p.ID,
		p.Title,
		p.Department,
		p.OwnerID,
		p.FileName,
		p.MimeType,
		p.SizeBytes,
		p.StorageProvider,
		p.StorageKey,
		p.ContentSHA256,
		string(p.Status),
		p.Score,
		riskRating,
		analysis,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert procedure: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Procedure, error) {
	query := `SELECT ` + selectColumns + ` FROM procedures WHERE id = $1`
	p, err := scanProcedure(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Procedure{}, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Procedure, error) {
	query := `SELECT ` + selectColumns + `
FROM procedures
WHERE ($1 = '' OR owner_id = $1)
  AND ($2 = '' OR department = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5`

	var limit sql.NullInt64
	if f.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(f.Limit), Valid: true}
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, query, f.OwnerID, f.Department, string(f.Status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	defer rows.Close()

	out := make([]Procedure, 0)
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcedure(row rowScanner) (Procedure, error) {
	var (
		p        Procedure
		status   string
		analysis []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Department,
		&p.OwnerID,
		&p.FileName,
		&p.MimeType,
		&p.SizeBytes,
		&p.StorageProvider,
		&p.StorageKey,
		&p.ContentSHA256,
		&status,
		&p.Score,
		&analysis,
		&p.CreatedAt,
	)
	if err != nil {
		return Procedure{}, err
	}
	p.Status = Status(status)
	var res quality.Result
	if err := json.Unmarshal(analysis, &res); err != nil {
		return Procedure{}, fmt.Errorf("decode analysis for %s: %w", p.ID, err)
	}
	p.Analysis = res
	return p, nil
}

var _ Repo = (*PGRepo)(nil)
