package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/support"
)

type SupportRepo struct {
	pool *pgxpool.Pool
}

func NewSupportRepo(pool *pgxpool.Pool) *SupportRepo {
	return &SupportRepo{pool: pool}
}

func (r *SupportRepo) CreateThread(ctx context.Context, ownerID string, req support.CreateThreadRequest) (support.Thread, error) {
	var t support.Thread

	err := r.pool.QueryRow(ctx, `
		INSERT INTO support_threads (id, user_id, subject, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, user_id, subject, status, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Subject, support.StatusOpen,
	).Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return support.Thread{}, err
	}

	return t, nil
}

func (r *SupportRepo) ListThreads(ctx context.Context, ownerID string) ([]support.Thread, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM support_threads
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]support.Thread, 0)

	for rows.Next() {
		var t support.Thread

		err = rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *SupportRepo) GetThread(ctx context.Context, ownerID, id string) (support.Thread, error) {
	var t support.Thread

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM support_threads
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return support.Thread{}, support.ErrNotFound
		}

		return support.Thread{}, err
	}

	return t, nil
}

// SetStatus flips a thread between open and closed. Setting the status
// a thread already has is a no-op, not an error; the row comes back
// either way.
func (r *SupportRepo) SetStatus(ctx context.Context, ownerID, id string, status support.ThreadStatus) (support.Thread, error) {
	var t support.Thread

	err := r.pool.QueryRow(ctx, `
		UPDATE support_threads
		SET status = $3,
		    updated_at = CASE WHEN status = $3 THEN updated_at ELSE NOW() END
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, subject, status, created_at, updated_at`,
		id, ownerID, status,
	).Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return support.Thread{}, support.ErrNotFound
		}

		return support.Thread{}, err
	}

	return t, nil
}

func (r *SupportRepo) CreateMessage(ctx context.Context, ownerID, threadID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error) {
	_, err := r.GetThread(ctx, ownerID, threadID)

	if err != nil {
		return support.ThreadMessage{}, err
	}

	var m support.ThreadMessage

	err = r.pool.QueryRow(ctx, `
		INSERT INTO support_thread_messages (id, thread_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, thread_id, author_id, body, created_at`,
		uuid.NewString(), threadID, authorID, req.Body,
	).Scan(&m.ID, &m.ThreadID, &m.AuthorID, &m.Body, &m.CreatedAt)

	if err != nil {
		return support.ThreadMessage{}, err
	}

	_, err = r.pool.Exec(ctx, `UPDATE support_threads SET updated_at = NOW() WHERE id = $1`, threadID)

	if err != nil {
		return support.ThreadMessage{}, err
	}

	return m, nil
}

func (r *SupportRepo) ListMessages(ctx context.Context, ownerID, threadID string) ([]support.ThreadMessage, error) {
	_, err := r.GetThread(ctx, ownerID, threadID)

	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, thread_id, author_id, body, created_at
		FROM support_thread_messages
		WHERE thread_id = $1
		ORDER BY created_at ASC, id ASC`,
		threadID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]support.ThreadMessage, 0)

	for rows.Next() {
		var m support.ThreadMessage

		err = rows.Scan(&m.ID, &m.ThreadID, &m.AuthorID, &m.Body, &m.CreatedAt)

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
