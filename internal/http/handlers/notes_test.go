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

	"github.com/lifehubhq/lifehub/internal/domain/note"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
)

type fakeNotesRepo struct {
	createFn func(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error)
	listFn   func(ctx context.Context, ownerID string) ([]note.Note, error)
	getFn    func(ctx context.Context, ownerID, id string) (note.Note, error)
	updateFn func(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (f *fakeNotesRepo) Create(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}

	return note.Note{}, nil
}

func (f *fakeNotesRepo) List(ctx context.Context, ownerID string) ([]note.Note, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}

	return []note.Note{}, nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, ownerID, id string) (note.Note, error) {
	if f.getFn != nil {
		return f.getFn(ctx, ownerID, id)
	}

	return note.Note{}, nil
}

func (f *fakeNotesRepo) Update(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, ownerID, id, req)
	}

	return note.Note{}, nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, ownerID, id)
	}

	return nil
}

func TestUpdateNoteHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeNotesRepo)
		wantStatusCode int
		wantErrCode    string
	}{
		{
			name: "success",
			url:  "/notes/" + validID,
			body: `{"title": "Groceries", "body": "milk, eggs", "version": 3}`,
			repoSetup: func(f *fakeNotesRepo) {
				f.updateFn = func(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
					if req.Version != 3 {
						return note.Note{}, errors.New("version not passed")
					}

					return note.Note{
						ID:        id,
						UserID:    ownerID,
						Title:     req.Title,
						Body:      req.Body,
						Version:   req.Version + 1,
						CreatedAt: now.Add(-time.Hour),
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// a stale version must surface as a conflict, never a silent
			// last-writer-wins overwrite
			name: "stale_version_conflicts",
			url:  "/notes/" + validID,
			body: `{"title": "Groceries", "body": "milk", "version": 2}`,
			repoSetup: func(f *fakeNotesRepo) {
				f.updateFn = func(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
					return note.Note{}, note.ErrVersionConflict
				}
			},
			wantStatusCode: http.StatusConflict,
			wantErrCode:    "version_conflict",
		},
		{
			name:           "missing_version_rejected",
			url:            "/notes/" + validID,
			body:           `{"title": "Groceries", "body": "milk"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/notes/" + newUUID(),
			body: `{"title": "Groceries", "version": 1}`,
			repoSetup: func(f *fakeNotesRepo) {
				f.updateFn = func(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
					return note.Note{}, note.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/notes/" + validID,
			body: `{"title": "Groceries", "version": 1}`,
			repoSetup: func(f *fakeNotesRepo) {
				f.updateFn = func(ctx context.Context, ownerID, id string, req note.UpdateNoteRequest) (note.Note, error) {
					return note.Note{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeNotesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewNotesHandler(fakeRepo)
			r := setupRouter(http.MethodPatch, "/notes/:id", testContext(), h.UpdateNote)

			req := httptest.NewRequest(http.MethodPatch, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrCode != "" {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal error: %v", err)
				}
				if resp.Error.Code != tt.wantErrCode {
					t.Fatalf("got error code %q, want %q", resp.Error.Code, tt.wantErrCode)
				}
			}
		})
	}
}

func TestCreateNoteHandler(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeNotesRepo{}
	fakeRepo.createFn = func(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error) {
		if ownerID != "owner-1" {
			return note.Note{}, errors.New("wrong owner: " + ownerID)
		}

		return note.Note{
			ID:        newUUID(),
			UserID:    ownerID,
			Title:     req.Title,
			Body:      req.Body,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	h := handlers.NewNotesHandler(fakeRepo)
	r := setupRouter(http.MethodPost, "/notes", testContext(), h.CreateNote)

	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(`{"title": "Groceries"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created note.Note
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal note: %v", err)
	}

	if created.Version != 1 {
		t.Fatalf("new note should start at version 1, got %d", created.Version)
	}
}
