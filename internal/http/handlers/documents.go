package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/document"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type DocumentsStore interface {
	Create(ctx context.Context, ownerID string, req document.CreateDocumentRequest) (document.SecureDocument, error)
	List(ctx context.Context, ownerID string) ([]document.SecureDocument, error)
	GetByID(ctx context.Context, ownerID, id string) (document.SecureDocument, error)
	Update(ctx context.Context, ownerID, id string, req document.UpdateDocumentRequest) (document.SecureDocument, error)
	Delete(ctx context.Context, ownerID, id string) error

	CreateField(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error)
	ListFields(ctx context.Context, ownerID, documentID string) ([]document.Field, error)
	UpdateField(ctx context.Context, ownerID, documentID, fieldID string, req document.UpdateFieldRequest) (document.Field, error)
	DeleteField(ctx context.Context, ownerID, documentID, fieldID string) error
}

type DocumentsHandler struct {
	repo DocumentsStore
}

func NewDocumentsHandler(repo DocumentsStore) *DocumentsHandler {
	return &DocumentsHandler{repo: repo}
}

// POST /documents

func (h *DocumentsHandler) CreateDocument(ctx *gin.Context) {
	var req document.CreateDocumentRequest

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

	d, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, d)
}

// GET /documents

func (h *DocumentsHandler) ListDocuments(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	docs, err := h.repo.List(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": docs,
		"count": len(docs),
	})
}

// GET /documents/:id

func (h *DocumentsHandler) GetDocument(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Document not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	d, err := h.repo.GetByID(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == document.ErrNotFound {
			RespondNotFound(ctx, "Document not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, d)
}

// PATCH /documents/:id

func (h *DocumentsHandler) UpdateDocument(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Document not found")
		return
	}

	var req document.UpdateDocumentRequest

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

	d, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == document.ErrNotFound {
			RespondNotFound(ctx, "Document not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, d)
}

// DELETE /documents/:id

func (h *DocumentsHandler) DeleteDocument(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Document not found")
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
		if err == document.ErrNotFound {
			RespondNotFound(ctx, "Document not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Field routes. The document is looked up under the effective owner
// first, so a field can never be attached to or read from someone
// else's document; a foreign parent looks exactly like a missing one.

// POST /documents/:id/fields

func (h *DocumentsHandler) CreateField(ctx *gin.Context) {
	documentID := ctx.Param("id")

	if !utils.IsUUID(documentID) {
		RespondNotFound(ctx, "Document not found")
		return
	}

	var req document.CreateFieldRequest

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

	f, err := h.repo.CreateField(cctx, ec.EffectiveOwnerID, documentID, req)

	if err != nil {
		if err == document.ErrNotFound {
			RespondNotFound(ctx, "Document not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, f)
}

// GET /documents/:id/fields

func (h *DocumentsHandler) ListFields(ctx *gin.Context) {
	documentID := ctx.Param("id")

	if !utils.IsUUID(documentID) {
		RespondNotFound(ctx, "Document not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	fields, err := h.repo.ListFields(cctx, ec.EffectiveOwnerID, documentID)

	if err != nil {
		if err == document.ErrNotFound {
			RespondNotFound(ctx, "Document not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": fields,
		"count": len(fields),
	})
}

// PATCH /documents/:id/fields/:fieldId

func (h *DocumentsHandler) UpdateField(ctx *gin.Context) {
	documentID := ctx.Param("id")
	fieldID := ctx.Param("fieldId")

	if !utils.IsUUID(documentID) || !utils.IsUUID(fieldID) {
		RespondNotFound(ctx, "Field not found")
		return
	}

	var req document.UpdateFieldRequest

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

	f, err := h.repo.UpdateField(cctx, ec.EffectiveOwnerID, documentID, fieldID, req)

	if err != nil {
		if err == document.ErrFieldNotFound || err == document.ErrNotFound {
			RespondNotFound(ctx, "Field not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, f)
}

// DELETE /documents/:id/fields/:fieldId

func (h *DocumentsHandler) DeleteField(ctx *gin.Context) {
	documentID := ctx.Param("id")
	fieldID := ctx.Param("fieldId")

	if !utils.IsUUID(documentID) || !utils.IsUUID(fieldID) {
		RespondNotFound(ctx, "Field not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.DeleteField(cctx, ec.EffectiveOwnerID, documentID, fieldID)

	if err != nil {
		if err == document.ErrFieldNotFound || err == document.ErrNotFound {
			RespondNotFound(ctx, "Field not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
