package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/bizmetric"
)

type BizMetricsRepo struct {
	pool *pgxpool.Pool
}

func NewBizMetricsRepo(pool *pgxpool.Pool) *BizMetricsRepo {
	return &BizMetricsRepo{pool: pool}
}

func (r *BizMetricsRepo) Create(ctx context.Context, ownerID string, req bizmetric.CreateMetricRequest) (bizmetric.Metric, error) {
	var m bizmetric.Metric

	err := r.pool.QueryRow(ctx, `
		INSERT INTO business_metrics (id, user_id, name, value, period, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, name, value, period, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Name, req.Value, req.Period,
	).Scan(&m.ID, &m.UserID, &m.Name, &m.Value, &m.Period, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return bizmetric.Metric{}, err
	}

	return m, nil
}

func (r *BizMetricsRepo) List(ctx context.Context, ownerID string) ([]bizmetric.Metric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, value, period, created_at, updated_at
		FROM business_metrics
		WHERE user_id = $1
		ORDER BY name ASC, period DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]bizmetric.Metric, 0)

	for rows.Next() {
		var m bizmetric.Metric

		err = rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Value, &m.Period, &m.CreatedAt, &m.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *BizMetricsRepo) Update(ctx context.Context, ownerID, id string, req bizmetric.UpdateMetricRequest) (bizmetric.Metric, error) {
	var m bizmetric.Metric

	err := r.pool.QueryRow(ctx, `
		UPDATE business_metrics
		SET name = $3,
		    value = $4,
		    period = $5,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, value, period, created_at, updated_at`,
		id, ownerID, req.Name, req.Value, req.Period,
	).Scan(&m.ID, &m.UserID, &m.Name, &m.Value, &m.Period, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bizmetric.Metric{}, bizmetric.ErrNotFound
		}

		return bizmetric.Metric{}, err
	}

	return m, nil
}

func (r *BizMetricsRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM business_metrics WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return bizmetric.ErrNotFound
	}

	return nil
}

// Summaries aggregates each metric name across periods; latest means
// the value of the most recent period.
func (r *BizMetricsRepo) Summaries(ctx context.Context, ownerID string) ([]bizmetric.Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name,
		       COUNT(*),
		       SUM(value),
		       AVG(value),
		       (ARRAY_AGG(value ORDER BY period DESC))[1]
		FROM business_metrics
		WHERE user_id = $1
		GROUP BY name
		ORDER BY name ASC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]bizmetric.Summary, 0)

	for rows.Next() {
		var s bizmetric.Summary

		err = rows.Scan(&s.Name, &s.Count, &s.Sum, &s.Average, &s.Latest)

		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}
