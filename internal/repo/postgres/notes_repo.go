package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/note"
)

type NotesRepo struct {
	pool *pgxpool.Pool
}

func NewNotesRepo(pool *pgxpool.Pool) *NotesRepo {
	return &NotesRepo{pool: pool}
}

func (r *NotesRepo) Create(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error) {
	var n note.Note

	err := r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, user_id, title, body, pinned, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, NOW(), NOW())
		RETURNING id, user_id, title, body, pinned, version, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Title, req.Body, req.Pinned,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Pinned, &n.Version, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) List(ctx context.Context, ownerID string) ([]note.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, body, pinned, version, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY pinned DESC, updated_at DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]note.Note, 0)

	for rows.Next() {
		var n note.Note

		err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Pinned, &n.Version, &n.CreatedAt, &n.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, ownerID, id string) (note.Note, error) {
	var n note.Note

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, body, pinned, version, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Pinned, &n.Version, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

// Update is conditional on the version the client read. When the row
// exists but the version moved on, the caller gets ErrVersionConflict
// instead of a silently dropped edit.
func (r *NotesRepo) Update(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
	var n note.Note

	err := r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $4,
		    body = $5,
		    pinned = $6,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND version = $3
		RETURNING id, user_id, title, body, pinned, version, created_at, updated_at`,
		id, ownerID, req.Version, req.Title, req.Body, req.Pinned,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Pinned, &n.Version, &n.CreatedAt, &n.UpdatedAt)

	if err == nil {
		return n, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return note.Note{}, err
	}

	// disambiguate: missing row vs stale version
	_, gerr := r.GetByID(ctx, ownerID, id)

	if gerr != nil {
		return note.Note{}, gerr
	}

	return note.Note{}, note.ErrVersionConflict
}

func (r *NotesRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}
