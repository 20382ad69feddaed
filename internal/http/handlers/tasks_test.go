package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lifehubhq/lifehub/internal/access"
	"github.com/lifehubhq/lifehub/internal/domain/task"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// testContext is the resolved access context the middleware would have
// put on the request.

func testContext() access.EffectiveContext {
	return access.EffectiveContext{
		CallerID:         "caller-1",
		CallerEmail:      "caller@example.com",
		EffectiveOwnerID: "owner-1",
		OwnerEmail:       "owner@example.com",
		ViewingOwnData:   false,
	}
}

// small helper which mounts one handler behind a canned access context

func setupRouter(method, path string, ec access.EffectiveContext, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		c.Set(middlewares.CtxAccessContext, ec)
		h(c)
	})

	return r
}

// Fake repository implementation of the handlers.TasksStore interface

type fakeTasksRepo struct {
	createFn     func(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error)
	listCursorFn func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error)
	getFn        func(ctx context.Context, ownerID, id string) (task.Task, error)
	updateFn     func(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error)
	deleteFn     func(ctx context.Context, ownerID, id string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) ListCursor(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, ownerID, filter, afterCreatedAt, afterID)
	}

	return []task.Task{}, false, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, ownerID, id)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, ownerID, id, req)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, ownerID, id)
	}

	return nil
}

func TestCreateTaskHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success_scoped_to_effective_owner",
			body: `{"title": "Renew passport", "priority": 3}`,
			repoSetup: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error) {
					// the row must land in the effective owner's account,
					// not the caller's
					if ownerID != "owner-1" {
						return task.Task{}, errors.New("wrong owner: " + ownerID)
					}

					return task.Task{
						ID:        newUUID(),
						UserID:    ownerID,
						Title:     req.Title,
						Status:    task.StatusTodo,
						Priority:  req.Priority,
						CreatedAt: now,
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error",
			body:           `{"title": ""}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title": "Renew passport"}`,
			repoSetup: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTasksRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTasksHandler(fakeRepo)
			r := setupRouter(http.MethodPost, "/tasks", testContext(), h.CreateTask)

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListTasksHandler(t *testing.T) {
	now := time.Now().UTC()

	validCursor, err := utils.EncodeTaskCursor(now.Add(-time.Minute), "e42b6ed3-0af3-49f0-9dcd-37aa7ed8c980")
	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeTasksRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success_first_page",
			url:  "/tasks?limit=20",
			repoSetup: func(f *fakeTasksRepo) {
				f.listCursorFn = func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
					if !afterCreatedAt.IsZero() || afterID != "" {
						return nil, false, errors.New("first page should carry no cursor position")
					}

					if filter.Limit != 20 {
						return nil, false, errors.New("limit not passed")
					}

					return []task.Task{
						{ID: "t-1", UserID: ownerID, Title: "Task 1", Status: task.StatusTodo, CreatedAt: now, UpdatedAt: now},
					}, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_status_filter",
			url:  "/tasks?status=done",
			repoSetup: func(f *fakeTasksRepo) {
				f.listCursorFn = func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
					if filter.Status == nil || *filter.Status != task.StatusDone {
						return nil, false, errors.New("status filter not passed")
					}

					return []task.Task{
						{ID: "t-2", UserID: ownerID, Title: "Done task", Status: task.StatusDone, CreatedAt: now, UpdatedAt: now},
					}, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_valid_cursor",
			url:  "/tasks?cursor=" + validCursor,
			repoSetup: func(f *fakeTasksRepo) {
				f.listCursorFn = func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
					if afterCreatedAt.IsZero() || afterID == "" {
						return nil, false, errors.New("cursor position not passed")
					}

					return []task.Task{
						{ID: "t-3", UserID: ownerID, Title: "Task 3", Status: task.StatusTodo, CreatedAt: now, UpdatedAt: now},
					}, true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:           "invalid_cursor",
			url:            "/tasks?cursor=!!!",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_status",
			url:            "/tasks?status=paused",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_priority",
			url:            "/tasks?priority=9",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "limit_out_of_range",
			url:            "/tasks?limit=500",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/tasks",
			repoSetup: func(f *fakeTasksRepo) {
				f.listCursorFn = func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
					return nil, false, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTasksRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTasksHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/tasks", testContext(), h.ListTasks)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Count int `json:"count"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Count != tt.wantCount {
					t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
				}
			}
		})
	}
}

func TestListTasksHandler_NextCursorOnMorePages(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeTasksRepo{}
	fakeRepo.listCursorFn = func(ctx context.Context, ownerID string, filter task.ListFilter, afterCreatedAt time.Time, afterID string) ([]task.Task, bool, error) {
		return []task.Task{
			{ID: newUUID(), UserID: ownerID, Title: "Task 1", Status: task.StatusTodo, CreatedAt: now, UpdatedAt: now},
			{ID: newUUID(), UserID: ownerID, Title: "Task 2", Status: task.StatusTodo, CreatedAt: now.Add(time.Second), UpdatedAt: now},
		}, true, nil
	}

	h := handlers.NewTasksHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/tasks", testContext(), h.ListTasks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?limit=2", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		NextCursor string `json:"nextCursor"`
		HasMore    bool   `json:"hasMore"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if !resp.HasMore || resp.NextCursor == "" {
		t.Fatalf("expected hasMore with a nextCursor, got %+v", resp)
	}

	// The cursor must round-trip back to the last row

	c, err := utils.DecodeTaskCursor(resp.NextCursor)
	if err != nil {
		t.Fatalf("nextCursor did not decode: %v", err)
	}

	if !c.CreatedAt.Equal(now.Add(time.Second)) {
		t.Fatalf("cursor points at wrong row: %+v", c)
	}
}

func TestGetTaskHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/tasks/" + validID,
			repoSetup: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, ownerID, id string) (task.Task, error) {
					return task.Task{ID: id, UserID: ownerID, Title: "Task", Status: task.StatusTodo, CreatedAt: now, UpdatedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// rows in someone else's account look exactly like missing rows
			name: "foreign_row_reads_as_not_found",
			url:  "/tasks/" + newUUID(),
			repoSetup: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, ownerID, id string) (task.Task, error) {
					return task.Task{}, task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_id_reads_as_not_found",
			url:            "/tasks/not-a-uuid",
			repoSetup:      nil,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/tasks/" + validID,
			repoSetup: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, ownerID, id string) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTasksRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTasksHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/tasks/:id", testContext(), h.GetTask)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	validID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/tasks/" + validID,
			repoSetup: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, ownerID, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/tasks/" + newUUID(),
			repoSetup: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, ownerID, id string) error {
					return task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/tasks/" + validID,
			repoSetup: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, ownerID, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTasksRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTasksHandler(fakeRepo)
			r := setupRouter(http.MethodDelete, "/tasks/:id", testContext(), h.DeleteTask)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
