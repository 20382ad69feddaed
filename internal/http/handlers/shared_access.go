package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/access"
	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/grant"
	"github.com/lifehubhq/lifehub/internal/domain/job"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/jobs"
	"github.com/lifehubhq/lifehub/internal/repo/postgres"
)

type GrantStore interface {
	Grant(ctx context.Context, ownerID, email string) (grant.AccessGrant, error)
	Revoke(ctx context.Context, ownerID, email string) error
	ListGrants(ctx context.Context, ownerID string) ([]grant.AccessGrant, error)
	GrantsForEmail(ctx context.Context, email string) ([]grant.AccessGrant, error)
}

type OwnerEmails interface {
	EmailByID(ctx context.Context, userID string) (string, error)
}

type InvitationEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type SharedAccessHandler struct {
	grants GrantStore
	owners OwnerEmails
	jobs   InvitationEnqueuer
}

func NewSharedAccessHandler(grants GrantStore, owners OwnerEmails, jobsRepo InvitationEnqueuer) *SharedAccessHandler {
	return &SharedAccessHandler{grants: grants, owners: owners, jobs: jobsRepo}
}

// POST /shared-access
//
// The grant is keyed on the email, not the account: inviting someone
// who has not registered yet still works, and the grant lights up the
// moment they sign up.

func (h *SharedAccessHandler) GrantAccess(ctx *gin.Context) {
	var req grant.CreateGrantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	// grants are always managed on the caller's own account, never on
	// a borrowed context
	if grant.NormalizeEmail(req.Email) == grant.NormalizeEmail(ec.CallerEmail) {
		RespondBadRequest(ctx, "Cannot grant access to yourself", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	g, err := h.grants.Grant(cctx, ec.CallerID, req.Email)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	h.enqueueInvitation(ctx, g)

	ctx.JSON(http.StatusCreated, g)
}

// DELETE /shared-access

func (h *SharedAccessHandler) RevokeAccess(ctx *gin.Context) {
	var req grant.RevokeGrantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// revoking an absent grant is a no-op, not an error
	err := h.grants.Revoke(cctx, ec.CallerID, req.Email)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GET /shared-access

func (h *SharedAccessHandler) ListGrants(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	grants, err := h.grants.ListGrants(cctx, ec.CallerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": grants,
		"count": len(grants),
	})
}

// GET /user-context
//
// Tells the client whose data it is currently looking at plus every
// context it could switch to via the X-Data-Context header.

func (h *SharedAccessHandler) UserContext(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	incoming, err := h.grants.GrantsForEmail(cctx, grant.NormalizeEmail(ec.CallerEmail))

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	available := make([]string, 0, len(incoming)+1)
	available = append(available, access.SelfContext)

	for _, g := range incoming {
		email, lerr := h.owners.EmailByID(cctx, g.OwnerID)

		if lerr != nil {
			RespondStorageUnavailable(ctx)
			return
		}

		available = append(available, email)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"isOwner":           ec.ViewingOwnData,
		"viewingOwnData":    ec.ViewingOwnData,
		"dataOwnerEmail":    ec.OwnerEmail,
		"currentUserEmail":  ec.CallerEmail,
		"availableContexts": available,
	})
}

func (h *SharedAccessHandler) enqueueInvitation(ctx *gin.Context, g grant.AccessGrant) {
	payload := jobs.ShareInvitationPayload{
		OwnerID:      g.OwnerID,
		GranteeEmail: g.GranteeEmail,
		GrantedAt:    g.GrantedAt,
		RequestID:    requestIDFrom(ctx),
	}

	raw, err := payload.ToJSONRaw()

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "grant.invitation_enqueue_failed",
			"error", err,
			"owner_id", g.OwnerID,
		)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	// re-granting refreshes granted_at, so the key changes and a fresh
	// invitation goes out; retries of the same grant dedupe
	key := "share:" + g.OwnerID + ":" + g.GranteeEmail + ":" + g.GrantedAt.UTC().Format(time.RFC3339)

	j, err := h.jobs.Create(cctx, job.CreateRequest{
		Type:           string(jobs.JobShareInvitation),
		Payload:        json.RawMessage(raw),
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &g.OwnerID,
	})

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return
		}

		// the grant itself stands; a lost invitation is only a missing email
		slog.Default().ErrorContext(ctx.Request.Context(), "grant.invitation_enqueue_failed",
			"error", err,
			"owner_id", g.OwnerID,
		)
		return
	}

	ctx.Set(middlewares.CtxJobID, j.ID)
}
