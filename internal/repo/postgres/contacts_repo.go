package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/contact"
)

type ContactsRepo struct {
	pool *pgxpool.Pool
}

func NewContactsRepo(pool *pgxpool.Pool) *ContactsRepo {
	return &ContactsRepo{pool: pool}
}

func (r *ContactsRepo) Create(ctx context.Context, ownerID string, req contact.CreateContactRequest) (contact.Contact, error) {
	var c contact.Contact

	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (id, user_id, name, email, phone, company, notes, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, user_id, name, email, phone, company, notes, metadata, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Name, req.Email, req.Phone, req.Company, req.Notes, req.Metadata,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return contact.Contact{}, err
	}

	return c, nil
}

func (r *ContactsRepo) List(ctx context.Context, ownerID string) ([]contact.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, email, phone, company, notes, metadata, created_at, updated_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY name ASC, id ASC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]contact.Contact, 0)

	for rows.Next() {
		var c contact.Contact

		err = rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ContactsRepo) GetByID(ctx context.Context, ownerID, id string) (contact.Contact, error) {
	var c contact.Contact

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone, company, notes, metadata, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}

		return contact.Contact{}, err
	}

	return c, nil
}

func (r *ContactsRepo) Update(ctx context.Context, ownerID, id string, req contact.UpdateContactRequest) (contact.Contact, error) {
	var c contact.Contact

	err := r.pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $3,
		    email = $4,
		    phone = $5,
		    company = $6,
		    notes = $7,
		    metadata = $8,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, email, phone, company, notes, metadata, created_at, updated_at`,
		id, ownerID, req.Name, req.Email, req.Phone, req.Company, req.Notes, req.Metadata,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}

		return contact.Contact{}, err
	}

	return c, nil
}

func (r *ContactsRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}

	return nil
}
