package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/healthrec"
)

type HealthRecordsRepo struct {
	pool *pgxpool.Pool
}

func NewHealthRecordsRepo(pool *pgxpool.Pool) *HealthRecordsRepo {
	return &HealthRecordsRepo{pool: pool}
}

func (r *HealthRecordsRepo) Create(ctx context.Context, ownerID string, req healthrec.CreateRecordRequest) (healthrec.Record, error) {
	var rec healthrec.Record

	err := r.pool.QueryRow(ctx, `
		INSERT INTO health_records (id, user_id, kind, value, unit, note, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, user_id, kind, value, unit, note, recorded_at, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Kind, req.Value, req.Unit, req.Note, req.RecordedAt,
	).Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Value, &rec.Unit, &rec.Note, &rec.RecordedAt, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return healthrec.Record{}, err
	}

	return rec, nil
}

func (r *HealthRecordsRepo) List(ctx context.Context, ownerID string, filter healthrec.ListFilter) ([]healthrec.Record, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	argsPosition := 2

	if filter.Kind != nil {
		conds = append(conds, fmt.Sprintf("kind = $%d", argsPosition))
		args = append(args, *filter.Kind)
		argsPosition++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("recorded_at >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("recorded_at <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	limit := filter.Limit

	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	query := `
		SELECT id, user_id, kind, value, unit, note, recorded_at, created_at, updated_at
		FROM health_records
		WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY recorded_at DESC, id DESC LIMIT $%d", argsPosition)

	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]healthrec.Record, 0)

	for rows.Next() {
		var rec healthrec.Record

		err = rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Value, &rec.Unit, &rec.Note, &rec.RecordedAt, &rec.CreatedAt, &rec.UpdatedAt)

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

func (r *HealthRecordsRepo) Update(ctx context.Context, ownerID, id string, req healthrec.UpdateRecordRequest) (healthrec.Record, error) {
	var rec healthrec.Record

	err := r.pool.QueryRow(ctx, `
		UPDATE health_records
		SET kind = $3,
		    value = $4,
		    unit = $5,
		    note = $6,
		    recorded_at = $7,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, kind, value, unit, note, recorded_at, created_at, updated_at`,
		id, ownerID, req.Kind, req.Value, req.Unit, req.Note, req.RecordedAt,
	).Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Value, &rec.Unit, &rec.Note, &rec.RecordedAt, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return healthrec.Record{}, healthrec.ErrNotFound
		}

		return healthrec.Record{}, err
	}

	return rec, nil
}

func (r *HealthRecordsRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM health_records WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return healthrec.ErrNotFound
	}

	return nil
}
