package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/calendar"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type CalendarStore interface {
	Create(ctx context.Context, ownerID string, req calendar.CreateEventRequest) (calendar.Event, error)
	List(ctx context.Context, ownerID string, filter calendar.ListFilter) ([]calendar.Event, error)
	GetByID(ctx context.Context, ownerID, id string) (calendar.Event, error)
	Update(ctx context.Context, ownerID, id string, req calendar.UpdateEventRequest) (calendar.Event, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type CalendarHandler struct {
	repo CalendarStore
}

func NewCalendarHandler(repo CalendarStore) *CalendarHandler {
	return &CalendarHandler{repo: repo}
}

// POST /calendar/events

func (h *CalendarHandler) CreateEvent(ctx *gin.Context) {
	var req calendar.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, "endAt must not be before startAt", nil)
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

// GET /calendar/events?from=&to=&limit=
//
// from/to select events overlapping the window, not just those
// starting inside it.

func (h *CalendarHandler) ListEvents(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var filter calendar.ListFilter

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

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		RespondBadRequest(ctx, "to must not be before from", nil)
		return
	}

	filter.Limit = 100

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > 500 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 500", nil)
			return
		}

		filter.Limit = n
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	events, err := h.repo.List(cctx, ec.EffectiveOwnerID, filter)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

// GET /calendar/events/:id

func (h *CalendarHandler) GetEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Event not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.GetByID(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == calendar.ErrNotFound {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

// PATCH /calendar/events/:id

func (h *CalendarHandler) UpdateEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Event not found")
		return
	}

	var req calendar.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, "endAt must not be before startAt", nil)
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == calendar.ErrNotFound {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

// DELETE /calendar/events/:id

func (h *CalendarHandler) DeleteEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Event not found")
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
		if err == calendar.ErrNotFound {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}
