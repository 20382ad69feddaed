package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/support"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type SupportStore interface {
	CreateThread(ctx context.Context, ownerID string, req support.CreateThreadRequest) (support.Thread, error)
	ListThreads(ctx context.Context, ownerID string) ([]support.Thread, error)
	GetThread(ctx context.Context, ownerID, id string) (support.Thread, error)
	SetStatus(ctx context.Context, ownerID, id string, status support.ThreadStatus) (support.Thread, error)
	CreateMessage(ctx context.Context, ownerID, threadID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error)
	ListMessages(ctx context.Context, ownerID, threadID string) ([]support.ThreadMessage, error)
}

type SupportHandler struct {
	repo SupportStore
}

func NewSupportHandler(repo SupportStore) *SupportHandler {
	return &SupportHandler{repo: repo}
}

// POST /support/threads

func (h *SupportHandler) CreateThread(ctx *gin.Context) {
	var req support.CreateThreadRequest

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

	t, err := h.repo.CreateThread(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	// an opening body becomes the first message
	if req.Body != "" {
		_, merr := h.repo.CreateMessage(cctx, ec.EffectiveOwnerID, t.ID, ec.CallerID, support.CreateThreadMessageRequest{Body: req.Body})

		if merr != nil {
			RespondStorageUnavailable(ctx)
			return
		}
	}

	ctx.JSON(http.StatusCreated, t)
}

// GET /support/threads

func (h *SupportHandler) ListThreads(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	threads, err := h.repo.ListThreads(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": threads,
		"count": len(threads),
	})
}

// GET /support/threads/:id

func (h *SupportHandler) GetThread(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Thread not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.GetThread(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == support.ErrNotFound {
			RespondNotFound(ctx, "Thread not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, t)
}

// POST /support/threads/:id/close
//
// Closing an already-closed thread is a no-op that returns the thread
// as it stands. Same for reopening an open one.

func (h *SupportHandler) CloseThread(ctx *gin.Context) {
	h.setStatus(ctx, support.StatusClosed)
}

// POST /support/threads/:id/reopen

func (h *SupportHandler) ReopenThread(ctx *gin.Context) {
	h.setStatus(ctx, support.StatusOpen)
}

func (h *SupportHandler) setStatus(ctx *gin.Context, status support.ThreadStatus) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Thread not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.SetStatus(cctx, ec.EffectiveOwnerID, id, status)

	if err != nil {
		if err == support.ErrNotFound {
			RespondNotFound(ctx, "Thread not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, t)
}

// POST /support/threads/:id/messages
//
// Messages append regardless of thread status; a reopened thread is
// indistinguishable from one that never closed.

func (h *SupportHandler) CreateMessage(ctx *gin.Context) {
	threadID := ctx.Param("id")

	if !utils.IsUUID(threadID) {
		RespondNotFound(ctx, "Thread not found")
		return
	}

	var req support.CreateThreadMessageRequest

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

	m, err := h.repo.CreateMessage(cctx, ec.EffectiveOwnerID, threadID, ec.CallerID, req)

	if err != nil {
		if err == support.ErrNotFound {
			RespondNotFound(ctx, "Thread not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

// GET /support/threads/:id/messages

func (h *SupportHandler) ListMessages(ctx *gin.Context) {
	threadID := ctx.Param("id")

	if !utils.IsUUID(threadID) {
		RespondNotFound(ctx, "Thread not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	messages, err := h.repo.ListMessages(cctx, ec.EffectiveOwnerID, threadID)

	if err != nil {
		if err == support.ErrNotFound {
			RespondNotFound(ctx, "Thread not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": messages,
		"count": len(messages),
	})
}
