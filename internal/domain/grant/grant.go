package grant

import (
	"errors"
	"strings"
	"time"
)

// AccessGrant lets one email view and edit another account's rows.
// At most one active grant exists per (owner, grantee email) pair.
type AccessGrant struct {
	OwnerID      string    `json:"ownerId"`
	GranteeEmail string    `json:"granteeEmail"`
	GrantedAt    time.Time `json:"grantedAt"`

	// Filled in when the grantee email belongs to a registered user.
	GranteeID   *string `json:"granteeId,omitempty"`
	GranteeName *string `json:"granteeName,omitempty"`
}

// Pending reports whether the grantee has not registered yet.
func (g AccessGrant) Pending() bool {
	return g.GranteeID == nil
}

var (
	ErrSelfGrant = errors.New("cannot grant access to yourself")
	ErrNotFound  = errors.New("grant not found")
)

type CreateGrantRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RevokeGrantRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// NormalizeEmail folds an address for comparison and storage.
// Grants are keyed case-insensitively on the grantee email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
