package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/job"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/jobs"
	"github.com/lifehubhq/lifehub/internal/repo/postgres"
)

type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (job.Job, error)
}

type JobsHandler struct {
	jobs JobsCreator
}

func NewJobsHandler(jobsRepo JobsCreator) *JobsHandler {
	return &JobsHandler{jobs: jobsRepo}
}

// POST /business-metrics/digest
//
// Queues a digest of the effective owner's business-metric summaries.
// One digest per owner per day; repeats within the window come back
// 202 with alreadyEnqueued set.

func (h *JobsHandler) EnqueueMetricsDigest(ctx *gin.Context) {
	runAt := time.Now().UTC()

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	runAtStr := ctx.Query("runAt")

	if runAtStr != "" {
		t, err := time.Parse(time.RFC3339, runAtStr)

		if err != nil {
			RespondBadRequest(ctx, "runAt must be RFC 3339 Datetime", nil)
			return
		}

		// small guard: allow slight clock drift but reject clearly-in-the-past schedules
		if t.Before(time.Now().UTC().Add(-30 * time.Second)) {
			RespondBadRequest(ctx, "runAt must be now or in the future", nil)
			return
		}

		runAt = t.UTC()
	}

	payload := jobs.MetricsDigestPayload{
		OwnerID:   ec.EffectiveOwnerID,
		ActorID:   ec.CallerID,
		RequestID: requestIDFrom(ctx),
	}

	raw, err := payload.ToJSONRaw()

	if err != nil {
		RespondInternal(ctx, "Could not enqueue job")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()
	key := "digest:metrics:" + ec.EffectiveOwnerID + ":" + runAt.Format("2006-01-02")

	j, err := h.jobs.Create(cctx, job.CreateRequest{
		Type:           string(jobs.JobMetricsDigest),
		Payload:        json.RawMessage(raw),
		RunAt:          runAt,
		MaxAttempts:    25,
		IdempotencyKey: &key,
		UserID:         &ec.EffectiveOwnerID,
	})

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			existing, gerr := h.jobs.GetByIdempotencyKey(cctx, key)

			if gerr != nil {
				RespondInternal(ctx, "Could not enqueue job")
				return
			}

			ctx.JSON(http.StatusAccepted, gin.H{
				"jobId":           existing.ID,
				"status":          existing.Status,
				"type":            existing.Type,
				"alreadyEnqueued": true,
			})
			ctx.Set(middlewares.CtxJobID, existing.ID)
			slog.Default().InfoContext(cctx, "job.enqueue",
				"request_id", requestIDFrom(ctx),
				"job_id", existing.ID,
				"job_type", existing.Type,
				"already_enqueued", true,
			)

			return

		}

		RespondInternal(ctx, "Could not enqueue job")
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"jobId":  j.ID,
		"status": j.Status,
		"type":   j.Type,
	})
	ctx.Set(middlewares.CtxJobID, j.ID)
	slog.Default().InfoContext(cctx, "job.enqueue",
		"request_id", requestIDFrom(ctx),
		"job_id", j.ID,
		"job_type", j.Type,
		"already_enqueued", false,
	)

}
