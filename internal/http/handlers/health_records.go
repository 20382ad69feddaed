package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/healthrec"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type HealthRecordsStore interface {
	Create(ctx context.Context, ownerID string, req healthrec.CreateRecordRequest) (healthrec.Record, error)
	List(ctx context.Context, ownerID string, filter healthrec.ListFilter) ([]healthrec.Record, error)
	Update(ctx context.Context, ownerID, id string, req healthrec.UpdateRecordRequest) (healthrec.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type HealthRecordsHandler struct {
	repo HealthRecordsStore
}

func NewHealthRecordsHandler(repo HealthRecordsStore) *HealthRecordsHandler {
	return &HealthRecordsHandler{repo: repo}
}

// POST /health-records

func (h *HealthRecordsHandler) CreateRecord(ctx *gin.Context) {
	var req healthrec.CreateRecordRequest

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

	r, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, r)
}

// GET /health-records?kind=&from=&to=&limit=

func (h *HealthRecordsHandler) ListRecords(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var filter healthrec.ListFilter

	if raw := ctx.Query("kind"); raw != "" {
		k := healthrec.Kind(raw)

		if k != healthrec.KindWeight && k != healthrec.KindSleep && k != healthrec.KindWorkout && k != healthrec.KindBloodPct {
			RespondBadRequest(ctx, "kind must be one of weight, sleep, workout, blood_pressure", nil)
			return
		}

		filter.Kind = &k
	}

	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "from must be RFC 3339 Datetime", nil)
			return
		}

		filter.From = &t
	}

	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "to must be RFC 3339 Datetime", nil)
			return
		}

		filter.To = &t
	}

	filter.Limit = 200

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > 1000 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 1000", nil)
			return
		}

		filter.Limit = n
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	records, err := h.repo.List(cctx, ec.EffectiveOwnerID, filter)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": records,
		"count": len(records),
	})
}

// PATCH /health-records/:id

func (h *HealthRecordsHandler) UpdateRecord(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Record not found")
		return
	}

	var req healthrec.UpdateRecordRequest

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

	r, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == healthrec.ErrNotFound {
			RespondNotFound(ctx, "Record not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, r)
}

// DELETE /health-records/:id

func (h *HealthRecordsHandler) DeleteRecord(ctx *gin.Context) {
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
		if err == healthrec.ErrNotFound {
			RespondNotFound(ctx, "Record not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
