package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/task"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type TasksStore interface {
	Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error)
	ListCursor(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error)
	GetByID(ctx context.Context, ownerID, id string) (task.Task, error)
	Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TasksHandler struct {
	repo TasksStore
}

func NewTasksHandler(repo TasksStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

// POST /tasks

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	var req task.CreateTaskRequest

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

	t, err := h.repo.Create(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

// GET /tasks?status=&priority=&dueFrom=&dueTo=&limit=&cursor=

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	filter, ok := parseTaskFilter(ctx)

	if !ok {
		return
	}

	afterCreatedAt := time.Time{}
	afterID := ""

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeTaskCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		afterCreatedAt = c.CreatedAt
		afterID = c.ID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	items, hasMore, err := h.repo.ListCursor(cctx, ec.EffectiveOwnerID, filter, afterCreatedAt, afterID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	next := ""

	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		next, err = utils.EncodeTaskCursor(last.CreatedAt, last.ID)

		if err != nil {
			RespondInternal(ctx, "Could not build cursor")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

// GET /tasks/:id

func (h *TasksHandler) GetTask(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.GetByID(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == task.ErrNotFound {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, t)
}

// PATCH /tasks/:id

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
		return
	}

	var req task.UpdateTaskRequest

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

	t, err := h.repo.Update(cctx, ec.EffectiveOwnerID, id, req)

	if err != nil {
		if err == task.ErrNotFound {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, t)
}

// DELETE /tasks/:id

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
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
		if err == task.ErrNotFound {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func parseTaskFilter(ctx *gin.Context) (task.ListFilter, bool) {
	var filter task.ListFilter

	if raw := ctx.Query("status"); raw != "" {
		s := task.Status(raw)

		if s != task.StatusTodo && s != task.StatusDoing && s != task.StatusDone {
			RespondBadRequest(ctx, "status must be one of todo, doing, done", nil)
			return filter, false
		}

		filter.Status = &s
	}

	if raw := ctx.Query("priority"); raw != "" {
		p, err := strconv.Atoi(raw)

		if err != nil || p < 0 || p > 5 {
			RespondBadRequest(ctx, "priority must be an integer between 0 and 5", nil)
			return filter, false
		}

		filter.Priority = &p
	}

	if raw := ctx.Query("dueFrom"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "dueFrom must be RFC 3339 Datetime", nil)
			return filter, false
		}

		filter.DueFrom = &t
	}

	if raw := ctx.Query("dueTo"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "dueTo must be RFC 3339 Datetime", nil)
			return filter, false
		}

		filter.DueTo = &t
	}

	filter.Limit = 50

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > 200 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 200", nil)
			return filter, false
		}

		filter.Limit = n
	}

	return filter, true
}
