package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/audit"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type LifeAuditStore interface {
	Create(ctx context.Context, ownerID string, req audit.CreateRecordRequest) (audit.Record, error)
	List(ctx context.Context, ownerID string) ([]audit.Record, error)
	Update(ctx context.Context, ownerID, id string, req audit.UpdateRecordRequest) (audit.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type LifeAuditHandler struct {
	repo LifeAuditStore
}

func NewLifeAuditHandler(repo LifeAuditStore) *LifeAuditHandler {
	return &LifeAuditHandler{repo: repo}
}

// POST /life-audit

func (h *LifeAuditHandler) CreateRecord(ctx *gin.Context) {
	var req audit.CreateRecordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !audit.ValidScore(req.Score) {
		RespondBadRequest(ctx, "score must be one of 1, 2, 3, 5, 8, 13, 21", nil)
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	r, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, r)
}

// GET /life-audit

func (h *LifeAuditHandler) ListRecords(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	records, err := h.repo.List(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": records,
		"count": len(records),
	})
}

// PATCH /life-audit/:id

func (h *LifeAuditHandler) UpdateRecord(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Record not found")
		return
	}

	var req audit.UpdateRecordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !audit.ValidScore(req.Score) {
		RespondBadRequest(ctx, "score must be one of 1, 2, 3, 5, 8, 13, 21", nil)
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	r, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == audit.ErrNotFound {
			RespondNotFound(ctx, "Record not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, r)
}

// DELETE /life-audit/:id

func (h *LifeAuditHandler) DeleteRecord(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Record not found")
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
		if err == audit.ErrNotFound {
			RespondNotFound(ctx, "Record not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
