package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/audit"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Create(ctx context.Context, ownerID string, req audit.CreateRecordRequest) (audit.Record, error) {
	var rec audit.Record

	err := r.pool.QueryRow(ctx, `
		INSERT INTO life_audit_records (id, user_id, category, score, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, category, score, comment, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Category, req.Score, req.Comment,
	).Scan(&rec.ID, &rec.UserID, &rec.Category, &rec.Score, &rec.Comment, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return audit.Record{}, err
	}

	return rec, nil
}

func (r *AuditRepo) List(ctx context.Context, ownerID string) ([]audit.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, category, score, comment, created_at, updated_at
		FROM life_audit_records
		WHERE user_id = $1
		ORDER BY category ASC, created_at DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]audit.Record, 0)

	for rows.Next() {
		var rec audit.Record

		err = rows.Scan(&rec.ID, &rec.UserID, &rec.Category, &rec.Score, &rec.Comment, &rec.CreatedAt, &rec.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, rec)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AuditRepo) Update(ctx context.Context, ownerID, id string, req audit.UpdateRecordRequest) (audit.Record, error) {
	var rec audit.Record

	err := r.pool.QueryRow(ctx, `
		UPDATE life_audit_records
		SET category = $3,
		    score = $4,
		    comment = $5,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, category, score, comment, created_at, updated_at`,
		id, ownerID, req.Category, req.Score, req.Comment,
	).Scan(&rec.ID, &rec.UserID, &rec.Category, &rec.Score, &rec.Comment, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return audit.Record{}, audit.ErrNotFound
		}

		return audit.Record{}, err
	}

	return rec, nil
}

func (r *AuditRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM life_audit_records WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return audit.ErrNotFound
	}

	return nil
}
