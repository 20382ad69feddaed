package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lifehubhq/lifehub/internal/domain/grant"
)

type grantKey struct {
	ownerID string
	email   string
}

// GrantsRepo mirrors the postgres grants repo for tests and dev runs.
type GrantsRepo struct {
	mu    sync.RWMutex
	items map[grantKey]grant.AccessGrant
}

func NewGrantsRepo() *GrantsRepo {
	return &GrantsRepo{
		items: make(map[grantKey]grant.AccessGrant),
	}
}

func (r *GrantsRepo) Grant(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
	g := grant.AccessGrant{
		OwnerID:      ownerID,
		GranteeEmail: grant.NormalizeEmail(email),
		GrantedAt:    time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[grantKey{ownerID: ownerID, email: g.GranteeEmail}] = g
	r.mu.Unlock()

	return g, nil
}

func (r *GrantsRepo) Revoke(ctx context.Context, ownerID, email string) error {
	r.mu.Lock()
	delete(r.items, grantKey{ownerID: ownerID, email: grant.NormalizeEmail(email)})
	r.mu.Unlock()

	return nil
}

func (r *GrantsRepo) ListGrants(ctx context.Context, ownerID string) ([]grant.AccessGrant, error) {
	r.mu.RLock()

	out := make([]grant.AccessGrant, 0)

	for k, g := range r.items {
		if k.ownerID == ownerID {
			out = append(out, g)
		}
	}

	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].GrantedAt.After(out[j].GrantedAt)
	})

	return out, nil
}

func (r *GrantsRepo) GrantsForEmail(ctx context.Context, email string) ([]grant.AccessGrant, error) {
	email = grant.NormalizeEmail(email)

	r.mu.RLock()

	out := make([]grant.AccessGrant, 0)

	for k, g := range r.items {
		if k.email == email {
			out = append(out, g)
		}
	}

	r.mu.RUnlock()

	// newest first, same contract as the postgres repo
	sort.Slice(out, func(i, j int) bool {
		return out[i].GrantedAt.After(out[j].GrantedAt)
	})

	return out, nil
}
