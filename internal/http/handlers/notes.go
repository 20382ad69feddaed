package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/note"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type NotesStore interface {
	Create(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error)
	List(ctx context.Context, ownerID string) ([]note.Note, error)
	GetByID(ctx context.Context, ownerID, id string) (note.Note, error)
	Update(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type NotesHandler struct {
	repo NotesStore
}

func NewNotesHandler(repo NotesStore) *NotesHandler {
	return &NotesHandler{repo: repo}
}

// POST /notes

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	var req note.CreateNoteRequest

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

	n, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, n)
}

// GET /notes

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	notes, err := h.repo.List(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": notes,
		"count": len(notes),
	})
}

// GET /notes/:id

func (h *NotesHandler) GetNote(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Note not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	n, err := h.repo.GetByID(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == note.ErrNotFound {
			RespondNotFound(ctx, "Note not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, n)
}

// PATCH /notes/:id
//
// The request carries the version the client last read. Two people
// editing the same note race on it; the slower save gets a 409 and
// re-reads instead of silently clobbering the faster one.

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Note not found")
		return
	}

	var req note.UpdateNoteRequest

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

	n, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == note.ErrNotFound {
			RespondNotFound(ctx, "Note not found")
			return
		}

		if err == note.ErrVersionConflict {
			RespondConflict(ctx, "version_conflict", "Note was modified since you read it; re-fetch and retry.")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, n)
}

// DELETE /notes/:id

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Note not found")
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
		if err == note.ErrNotFound {
			RespondNotFound(ctx, "Note not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
