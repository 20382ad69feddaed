package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/calendar"
)

type CalendarRepo struct {
	pool *pgxpool.Pool
}

func NewCalendarRepo(pool *pgxpool.Pool) *CalendarRepo {
	return &CalendarRepo{pool: pool}
}

func (r *CalendarRepo) Create(ctx context.Context, ownerID string, req calendar.CreateEventRequest) (calendar.Event, error) {
	var e calendar.Event

	err := r.pool.QueryRow(ctx, `
		INSERT INTO calendar_events (id, user_id, title, location, notes, start_at, end_at, all_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, user_id, title, location, notes, start_at, end_at, all_day, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Title, req.Location, req.Notes, req.StartAt, req.EndAt, req.AllDay,
	).Scan(&e.ID, &e.UserID, &e.Title, &e.Location, &e.Notes, &e.StartAt, &e.EndAt, &e.AllDay, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return calendar.Event{}, err
	}

	return e, nil
}

func (r *CalendarRepo) List(ctx context.Context, ownerID string, filter calendar.ListFilter) ([]calendar.Event, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	argsPosition := 2

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("end_at >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("start_at <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	limit := filter.Limit

	if limit <= 0 || limit > 500 {
		limit = 200
	}

	query := `
		SELECT id, user_id, title, location, notes, start_at, end_at, all_day, created_at, updated_at
		FROM calendar_events
		WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY start_at ASC, id ASC LIMIT $%d", argsPosition)

	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]calendar.Event, 0)

	for rows.Next() {
		var e calendar.Event

		err = rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Location, &e.Notes, &e.StartAt, &e.EndAt, &e.AllDay, &e.CreatedAt, &e.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CalendarRepo) GetByID(ctx context.Context, ownerID, id string) (calendar.Event, error) {
	var e calendar.Event

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, location, notes, start_at, end_at, all_day, created_at, updated_at
		FROM calendar_events
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&e.ID, &e.UserID, &e.Title, &e.Location, &e.Notes, &e.StartAt, &e.EndAt, &e.AllDay, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Event{}, calendar.ErrNotFound
		}

		return calendar.Event{}, err
	}

	return e, nil
}

func (r *CalendarRepo) Update(ctx context.Context, ownerID, id string, req calendar.UpdateEventRequest) (calendar.Event, error) {
	var e calendar.Event

	err := r.pool.QueryRow(ctx, `
		UPDATE calendar_events
		SET title = $3,
		    location = $4,
		    notes = $5,
		    start_at = $6,
		    end_at = $7,
		    all_day = $8,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, location, notes, start_at, end_at, all_day, created_at, updated_at`,
		id, ownerID, req.Title, req.Location, req.Notes, req.StartAt, req.EndAt, req.AllDay,
	).Scan(&e.ID, &e.UserID, &e.Title, &e.Location, &e.Notes, &e.StartAt, &e.EndAt, &e.AllDay, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Event{}, calendar.ErrNotFound
		}

		return calendar.Event{}, err
	}

	return e, nil
}

func (r *CalendarRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return calendar.ErrNotFound
	}

	return nil
}
