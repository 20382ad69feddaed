package postgres

import (
	"context"

	"github.com/lifehubhq/lifehub/internal/domain/grant"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GrantsRepo struct {
	pool *pgxpool.Pool
}

func NewGrantsRepo(pool *pgxpool.Pool) *GrantsRepo {
	return &GrantsRepo{pool: pool}
}

// Grant upserts the (owner, grantee email) pair. Granting twice only
// refreshes the timestamp, so the unique constraint never trips.
func (r *GrantsRepo) Grant(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
	var g grant.AccessGrant

	err := r.pool.QueryRow(ctx, `
		INSERT INTO access_grants (owner_id, grantee_email, granted_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id, grantee_email)
		DO UPDATE SET granted_at = NOW()
		RETURNING owner_id, grantee_email, granted_at`,
		ownerID, grant.NormalizeEmail(email),
	).Scan(&g.OwnerID, &g.GranteeEmail, &g.GrantedAt)

	if err != nil {
		return grant.AccessGrant{}, err
	}

	return g, nil
}

// Revoke deletes the grant. Revoking a grant that does not exist is
// not an error.
func (r *GrantsRepo) Revoke(ctx context.Context, ownerID, email string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM access_grants
		WHERE owner_id = $1 AND grantee_email = $2`,
		ownerID, grant.NormalizeEmail(email),
	)

	return err
}

// ListGrants returns the owner's grants annotated with the grantee's
// identity when the email has since registered.
func (r *GrantsRepo) ListGrants(ctx context.Context, ownerID string) ([]grant.AccessGrant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.owner_id, g.grantee_email, g.granted_at, u.id, u.name
		FROM access_grants g
		LEFT JOIN users u ON LOWER(u.email) = g.grantee_email
		WHERE g.owner_id = $1
		ORDER BY g.granted_at DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]grant.AccessGrant, 0)

	for rows.Next() {
		var g grant.AccessGrant

		err = rows.Scan(&g.OwnerID, &g.GranteeEmail, &g.GrantedAt, &g.GranteeID, &g.GranteeName)

		if err != nil {
			return nil, err
		}

		out = append(out, g)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

// GrantsForEmail feeds the context resolver: active grants naming the
// email as grantee, newest first. Runs on every owned-resource request,
// deliberately uncached.
func (r *GrantsRepo) GrantsForEmail(ctx context.Context, email string) ([]grant.AccessGrant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT owner_id, grantee_email, granted_at
		FROM access_grants
		WHERE grantee_email = $1
		ORDER BY granted_at DESC`,
		grant.NormalizeEmail(email),
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]grant.AccessGrant, 0)

	for rows.Next() {
		var g grant.AccessGrant

		err = rows.Scan(&g.OwnerID, &g.GranteeEmail, &g.GrantedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, g)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}
