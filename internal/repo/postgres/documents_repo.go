package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/document"
)

type DocumentsRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentsRepo(pool *pgxpool.Pool) *DocumentsRepo {
	return &DocumentsRepo{pool: pool}
}

func (r *DocumentsRepo) Create(ctx context.Context, ownerID string, req document.CreateDocumentRequest) (document.SecureDocument, error) {
	var d document.SecureDocument

	err := r.pool.QueryRow(ctx, `
		INSERT INTO secure_documents (id, user_id, title, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, user_id, title, category, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Title, req.Category,
	).Scan(&d.ID, &d.UserID, &d.Title, &d.Category, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		return document.SecureDocument{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) List(ctx context.Context, ownerID string) ([]document.SecureDocument, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, category, created_at, updated_at
		FROM secure_documents
		WHERE user_id = $1
		ORDER BY title ASC, id ASC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]document.SecureDocument, 0)

	for rows.Next() {
		var d document.SecureDocument

		err = rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Category, &d.CreatedAt, &d.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, d)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *DocumentsRepo) GetByID(ctx context.Context, ownerID, id string) (document.SecureDocument, error) {
	var d document.SecureDocument

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, category, created_at, updated_at
		FROM secure_documents
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&d.ID, &d.UserID, &d.Title, &d.Category, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.SecureDocument{}, document.ErrNotFound
		}

		return document.SecureDocument{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) Update(ctx context.Context, ownerID, id string, req document.UpdateDocumentRequest) (document.SecureDocument, error) {
	var d document.SecureDocument

	err := r.pool.QueryRow(ctx, `
		UPDATE secure_documents
		SET title = $3,
		    category = $4,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, category, created_at, updated_at`,
		id, ownerID, req.Title, req.Category,
	).Scan(&d.ID, &d.UserID, &d.Title, &d.Category, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.SecureDocument{}, document.ErrNotFound
		}

		return document.SecureDocument{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) Delete(ctx context.Context, ownerID, id string) error {
	// fields go with the document
	tag, err := r.pool.Exec(ctx, `DELETE FROM secure_documents WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}

	return nil
}

// Field operations take the owner id and verify containment through the
// parent join: a field under someone else's document is indistinguishable
// from a missing one.

func (r *DocumentsRepo) CreateField(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error) {
	// parent ownership first
	_, err := r.GetByID(ctx, ownerID, documentID)

	if err != nil {
		return document.Field{}, err
	}

	var f document.Field

	err = r.pool.QueryRow(ctx, `
		INSERT INTO document_fields (id, document_id, label, value, secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, document_id, label, value, secret, created_at, updated_at`,
		uuid.NewString(), documentID, req.Label, req.Value, req.Secret,
	).Scan(&f.ID, &f.DocumentID, &f.Label, &f.Value, &f.Secret, &f.CreatedAt, &f.UpdatedAt)

	if err != nil {
		return document.Field{}, err
	}

	return f, nil
}

func (r *DocumentsRepo) ListFields(ctx context.Context, ownerID, documentID string) ([]document.Field, error) {
	_, err := r.GetByID(ctx, ownerID, documentID)

	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, label, value, secret, created_at, updated_at
		FROM document_fields
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC`,
		documentID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]document.Field, 0)

	for rows.Next() {
		var f document.Field

		err = rows.Scan(&f.ID, &f.DocumentID, &f.Label, &f.Value, &f.Secret, &f.CreatedAt, &f.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *DocumentsRepo) UpdateField(ctx context.Context, ownerID, documentID, fieldID string, req document.UpdateFieldRequest) (document.Field, error) {
	var f document.Field

	err := r.pool.QueryRow(ctx, `
		UPDATE document_fields f
		SET label = $4,
		    value = $5,
		    secret = $6,
		    updated_at = NOW()
		FROM secure_documents d
		WHERE f.id = $1
		  AND f.document_id = $2
		  AND d.id = f.document_id
		  AND d.user_id = $3
		RETURNING f.id, f.document_id, f.label, f.value, f.secret, f.created_at, f.updated_at`,
		fieldID, documentID, ownerID, req.Label, req.Value, req.Secret,
	).Scan(&f.ID, &f.DocumentID, &f.Label, &f.Value, &f.Secret, &f.CreatedAt, &f.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Field{}, document.ErrFieldNotFound
		}

		return document.Field{}, err
	}

	return f, nil
}

func (r *DocumentsRepo) DeleteField(ctx context.Context, ownerID, documentID, fieldID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM document_fields f
		USING secure_documents d
		WHERE f.id = $1
		  AND f.document_id = $2
		  AND d.id = f.document_id
		  AND d.user_id = $3`,
		fieldID, documentID, ownerID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return document.ErrFieldNotFound
	}

	return nil
}
