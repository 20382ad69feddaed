package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/task"
)

type TasksRepo struct {
	pool *pgxpool.Pool
}

func NewTasksRepo(pool *pgxpool.Pool) *TasksRepo {
	return &TasksRepo{pool: pool}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error) {
	status := req.Status

	if status == "" {
		status = task.StatusTodo
	}

	var t task.Task

	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, user_id, title, description, status, priority, due_at, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Title, req.Description, status, req.Priority, req.DueAt,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// ListCursor pages through the owner's tasks newest first. afterCreatedAt
// and afterID come from the previous page's cursor; both zero means the
// first page.
func (r *TasksRepo) ListCursor(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	argsPosition := 2

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, *filter.Priority)
		argsPosition++
	}

	if filter.DueFrom != nil {
		conds = append(conds, fmt.Sprintf("due_at >= $%d", argsPosition))
		args = append(args, *filter.DueFrom)
		argsPosition++
	}

	if filter.DueTo != nil {
		conds = append(conds, fmt.Sprintf("due_at <= $%d", argsPosition))
		args = append(args, *filter.DueTo)
		argsPosition++
	}

	if !afterCreatedAt.IsZero() && afterID != "" {
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", argsPosition, argsPosition+1))
		args = append(args, afterCreatedAt, afterID)
		argsPosition += 2
	}

	limit := filter.Limit

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// fetch one extra row to know whether another page exists
	query := `
		SELECT id, user_id, title, description, status, priority, due_at, created_at, updated_at
		FROM tasks
		WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argsPosition)

	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	out := make([]task.Task, 0, limit)

	for rows.Next() {
		var t task.Task

		err = rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)

		if err != nil {
			return nil, false, err
		}

		out = append(out, t)
	}

	err = rows.Err()

	if err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit

	if hasMore {
		out = out[:limit]
	}

	return out, hasMore, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	var t task.Task

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, status, priority, due_at, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3,
		    description = $4,
		    status = $5,
		    priority = $6,
		    due_at = $7,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, status, priority, due_at, created_at, updated_at`,
		id, ownerID, req.Title, req.Description, req.Status, req.Priority, req.DueAt,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}
