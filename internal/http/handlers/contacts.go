package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/contact"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type ContactsStore interface {
	Create(ctx context.Context, ownerID string, req contact.CreateContactRequest) (contact.Contact, error)
	List(ctx context.Context, ownerID string) ([]contact.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (contact.Contact, error)
	Update(ctx context.Context, ownerID, id string, req contact.UpdateContactRequest) (contact.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type ContactsHandler struct {
	repo ContactsStore
}

func NewContactsHandler(repo ContactsStore) *ContactsHandler {
	return &ContactsHandler{repo: repo}
}

// POST /contacts

func (h *ContactsHandler) CreateContact(ctx *gin.Context) {
	var req contact.CreateContactRequest

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

	c, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

// GET /contacts
//
// Contact books change rarely, so the list is served with an ETag and
// honors If-None-Match.

func (h *ContactsHandler) ListContacts(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	contacts, err := h.repo.List(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": contacts,
		"count": len(contacts),
	})
}

// GET /contacts/:id

func (h *ContactsHandler) GetContact(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Contact not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	c, err := h.repo.GetByID(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// PATCH /contacts/:id

func (h *ContactsHandler) UpdateContact(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Contact not found")
		return
	}

	var req contact.UpdateContactRequest

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

	c, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// DELETE /contacts/:id

func (h *ContactsHandler) DeleteContact(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Contact not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == contact.ErrNotFound {
			RespondNotFound(ctx, "Contact not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
