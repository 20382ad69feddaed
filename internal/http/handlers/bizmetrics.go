package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/cache"
	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/bizmetric"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type BizMetricsStore interface {
	Create(ctx context.Context, ownerID string, req bizmetric.CreateMetricRequest) (bizmetric.Metric, error)
	List(ctx context.Context, ownerID string) ([]bizmetric.Metric, error)
	Update(ctx context.Context, ownerID, id string, req bizmetric.UpdateMetricRequest) (bizmetric.Metric, error)
	Delete(ctx context.Context, ownerID, id string) error
	Summaries(ctx context.Context, ownerID string) ([]bizmetric.Summary, error)
}

type BizMetricsHandler struct {
	repo BizMetricsStore

	// caches the summary aggregation only; row reads and writes and
	// grant resolution always hit storage
	summaries *cache.Cache
}

func NewBizMetricsHandler(repo BizMetricsStore, summaries *cache.Cache) *BizMetricsHandler {
	return &BizMetricsHandler{repo: repo, summaries: summaries}
}

// POST /business-metrics

func (h *BizMetricsHandler) CreateMetric(ctx *gin.Context) {
	var req bizmetric.CreateMetricRequest

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

	m, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	h.invalidateSummary(ec.EffectiveOwnerID)

	ctx.JSON(http.StatusCreated, m)
}

// GET /business-metrics

func (h *BizMetricsHandler) ListMetrics(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	metrics, err := h.repo.List(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": metrics,
		"count": len(metrics),
	})
}

// PATCH /business-metrics/:id

func (h *BizMetricsHandler) UpdateMetric(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Metric not found")
		return
	}

	var req bizmetric.UpdateMetricRequest

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

	m, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == bizmetric.ErrNotFound {
			RespondNotFound(ctx, "Metric not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	h.invalidateSummary(ec.EffectiveOwnerID)

	ctx.JSON(http.StatusOK, m)
}

// DELETE /business-metrics/:id

func (h *BizMetricsHandler) DeleteMetric(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Metric not found")
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
		if err == bizmetric.ErrNotFound {
			RespondNotFound(ctx, "Metric not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	h.invalidateSummary(ec.EffectiveOwnerID)

	ctx.Status(http.StatusNoContent)
}

// GET /business-metrics/summary

func (h *BizMetricsHandler) Summary(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	key := utils.BuildMetricsSummaryCacheKey(ec.EffectiveOwnerID)

	if h.summaries != nil {
		if v, hit := h.summaries.Get(key); hit {
			cached, good := v.([]bizmetric.Summary)

			if good {
				ctx.JSON(http.StatusOK, gin.H{
					"items":  cached,
					"count":  len(cached),
					"cached": true,
				})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	summaries, err := h.repo.Summaries(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	if h.summaries != nil {
		h.summaries.Set(key, summaries)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":  summaries,
		"count":  len(summaries),
		"cached": false,
	})
}

func (h *BizMetricsHandler) invalidateSummary(ownerID string) {
	if h.summaries != nil {
		h.summaries.Delete(utils.BuildMetricsSummaryCacheKey(ownerID))
	}
}
