package access

import (
	"context"
	"errors"

	"github.com/lifehubhq/lifehub/internal/domain/grant"
)

// SelfContext is the X-Data-Context value that forces the caller's own
// account even when grants exist.
const SelfContext = "self"

var ErrNoSuchGrant = errors.New("no active grant from the requested owner")

// GrantSource is the slice of the grant store the resolver needs.
// Keep this small so tests can fake it easily.
type GrantSource interface {
	// GrantsForEmail returns active grants naming the email as grantee,
	// most recently granted first.
	GrantsForEmail(ctx context.Context, email string) ([]grant.AccessGrant, error)
}

type OwnerLookup interface {
	EmailByID(ctx context.Context, userID string) (string, error)
}

type Resolver struct {
	grants GrantSource
	owners OwnerLookup
}

func NewResolver(grants GrantSource, owners OwnerLookup) *Resolver {
	return &Resolver{grants: grants, owners: owners}
}

// Resolve works out the effective data owner for a request.
//
// requestedOwner is the raw X-Data-Context header: empty, "self", or an
// owner's email. With no header and multiple grants the most recently
// granted owner wins; a header naming an owner who never granted (or
// has revoked) fails rather than silently falling back to self, so a
// write can never land in an unintended account.
func (r *Resolver) Resolve(ctx context.Context, callerID, callerEmail, requestedOwner string) (EffectiveContext, error) {
	self := EffectiveContext{
		CallerID:         callerID,
		CallerEmail:      callerEmail,
		EffectiveOwnerID: callerID,
		OwnerEmail:       callerEmail,
		ViewingOwnData:   true,
	}

	if grant.NormalizeEmail(requestedOwner) == SelfContext {
		return self, nil
	}

	grants, err := r.grants.GrantsForEmail(ctx, grant.NormalizeEmail(callerEmail))

	if err != nil {
		return EffectiveContext{}, err
	}

	if len(grants) == 0 {
		if requestedOwner != "" {
			return EffectiveContext{}, ErrNoSuchGrant
		}
		return self, nil
	}

	chosen := grants[0]

	if requestedOwner != "" {
		found := false

		for _, g := range grants {
			email, lerr := r.owners.EmailByID(ctx, g.OwnerID)

			if lerr != nil {
				return EffectiveContext{}, lerr
			}

			if grant.NormalizeEmail(email) == grant.NormalizeEmail(requestedOwner) {
				chosen = g
				found = true
				break
			}
		}

		if !found {
			return EffectiveContext{}, ErrNoSuchGrant
		}
	}

	ownerEmail, err := r.owners.EmailByID(ctx, chosen.OwnerID)

	if err != nil {
		return EffectiveContext{}, err
	}

	return EffectiveContext{
		CallerID:         callerID,
		CallerEmail:      callerEmail,
		EffectiveOwnerID: chosen.OwnerID,
		OwnerEmail:       ownerEmail,
		ViewingOwnData:   false,
	}, nil
}
