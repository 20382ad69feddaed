package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifehubhq/lifehub/internal/domain/support"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
)

type fakeSupportRepo struct {
	createThreadFn func(ctx context.Context, ownerID string, req support.CreateThreadRequest) (support.Thread, error)
	listThreadsFn  func(ctx context.Context, ownerID string) ([]support.Thread, error)
	getThreadFn    func(ctx context.Context, ownerID, id string) (support.Thread, error)
	setStatusFn    func(ctx context.Context, ownerID, id string, status support.ThreadStatus) (support.Thread, error)
	createMsgFn    func(ctx context.Context, ownerID, threadID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error)
	listMsgsFn     func(ctx context.Context, ownerID, threadID string) ([]support.ThreadMessage, error)
}

func (f *fakeSupportRepo) CreateThread(ctx context.Context, ownerID string, req support.CreateThreadRequest) (support.Thread, error) {
	if f.createThreadFn != nil {
		return f.createThreadFn(ctx, ownerID, req)
	}

	return support.Thread{}, nil
}

func (f *fakeSupportRepo) ListThreads(ctx context.Context, ownerID string) ([]support.Thread, error) {
	if f.listThreadsFn != nil {
		return f.listThreadsFn(ctx, ownerID)
	}

	return []support.Thread{}, nil
}

func (f *fakeSupportRepo) GetThread(ctx context.Context, ownerID, id string) (support.Thread, error) {
	if f.getThreadFn != nil {
		return f.getThreadFn(ctx, ownerID, id)
	}

	return support.Thread{}, nil
}

func (f *fakeSupportRepo) SetStatus(ctx context.Context, ownerID, id string, status support.ThreadStatus) (support.Thread, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, ownerID, id, status)
	}

	return support.Thread{}, nil
}

func (f *fakeSupportRepo) CreateMessage(ctx context.Context, ownerID, threadID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error) {
	if f.createMsgFn != nil {
		return f.createMsgFn(ctx, ownerID, threadID, authorID, req)
	}

	return support.ThreadMessage{}, nil
}

func (f *fakeSupportRepo) ListMessages(ctx context.Context, ownerID, threadID string) ([]support.ThreadMessage, error) {
	if f.listMsgsFn != nil {
		return f.listMsgsFn(ctx, ownerID, threadID)
	}

	return []support.ThreadMessage{}, nil
}

func TestCreateSupportThreadHandler(t *testing.T) {
	now := time.Now().UTC()

	t.Run("opening_body_becomes_first_message", func(t *testing.T) {
		fakeRepo := &fakeSupportRepo{}
		threadID := newUUID()

		var gotMessageBody string
		var gotAuthor string

		fakeRepo.createThreadFn = func(ctx context.Context, ownerID string, req support.CreateThreadRequest) (support.Thread, error) {
			return support.Thread{
				ID:        threadID,
				UserID:    ownerID,
				Subject:   req.Subject,
				Status:    support.StatusOpen,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}

		fakeRepo.createMsgFn = func(ctx context.Context, ownerID, tID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error) {
			if tID != threadID {
				return support.ThreadMessage{}, errors.New("message attached to wrong thread")
			}

			gotMessageBody = req.Body
			gotAuthor = authorID

			return support.ThreadMessage{ID: newUUID(), ThreadID: tID, AuthorID: authorID, Body: req.Body, CreatedAt: now}, nil
		}

		h := handlers.NewSupportHandler(fakeRepo)
		r := setupRouter(http.MethodPost, "/support/threads", testContext(), h.CreateThread)

		body := `{"subject": "Billing question", "body": "I was charged twice"}`
		req := httptest.NewRequest(http.MethodPost, "/support/threads", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		if gotMessageBody != "I was charged twice" {
			t.Fatalf("opening body not stored as first message, got %q", gotMessageBody)
		}

		if gotAuthor != "caller-1" {
			t.Fatalf("first message should be authored by the caller, got %q", gotAuthor)
		}
	})

	t.Run("no_body_no_message", func(t *testing.T) {
		fakeRepo := &fakeSupportRepo{}
		called := false

		fakeRepo.createMsgFn = func(ctx context.Context, ownerID, threadID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error) {
			called = true
			return support.ThreadMessage{}, nil
		}

		h := handlers.NewSupportHandler(fakeRepo)
		r := setupRouter(http.MethodPost, "/support/threads", testContext(), h.CreateThread)

		req := httptest.NewRequest(http.MethodPost, "/support/threads", bytes.NewBufferString(`{"subject": "Just a subject"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		if called {
			t.Fatalf("no opening body should mean no first message")
		}
	})
}

func TestCloseReopenSupportThreadHandler(t *testing.T) {
	now := time.Now().UTC()
	threadID := newUUID()

	tests := []struct {
		name           string
		handlerName    string
		wantStatus     support.ThreadStatus
		repoErr        error
		wantStatusCode int
	}{
		{name: "close", handlerName: "close", wantStatus: support.StatusClosed, wantStatusCode: http.StatusOK},
		{name: "reopen", handlerName: "reopen", wantStatus: support.StatusOpen, wantStatusCode: http.StatusOK},
		{name: "close_missing_thread", handlerName: "close", wantStatus: support.StatusClosed, repoErr: support.ErrNotFound, wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeSupportRepo{}

			fakeRepo.setStatusFn = func(ctx context.Context, ownerID, id string, status support.ThreadStatus) (support.Thread, error) {
				if tt.repoErr != nil {
					return support.Thread{}, tt.repoErr
				}

				if status != tt.wantStatus {
					return support.Thread{}, errors.New("wrong target status: " + string(status))
				}

				// already in the target state: still return the thread
				return support.Thread{ID: id, UserID: ownerID, Subject: "sub", Status: status, CreatedAt: now, UpdatedAt: now}, nil
			}

			h := handlers.NewSupportHandler(fakeRepo)

			var fn func(*testing.T) *httptest.ResponseRecorder

			if tt.handlerName == "close" {
				r := setupRouter(http.MethodPost, "/support/threads/:id/close", testContext(), h.CloseThread)
				fn = func(t *testing.T) *httptest.ResponseRecorder {
					req := httptest.NewRequest(http.MethodPost, "/support/threads/"+threadID+"/close", nil)
					w := httptest.NewRecorder()
					r.ServeHTTP(w, req)
					return w
				}
			} else {
				r := setupRouter(http.MethodPost, "/support/threads/:id/reopen", testContext(), h.ReopenThread)
				fn = func(t *testing.T) *httptest.ResponseRecorder {
					req := httptest.NewRequest(http.MethodPost, "/support/threads/"+threadID+"/reopen", nil)
					w := httptest.NewRecorder()
					r.ServeHTTP(w, req)
					return w
				}
			}

			w := fn(t)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			// the operation is idempotent: a second call lands in the same place
			if tt.repoErr == nil {
				w2 := fn(t)

				if w2.Code != tt.wantStatusCode {
					t.Fatalf("second call got status %d, want %d", w2.Code, tt.wantStatusCode)
				}
			}
		})
	}
}

func TestCreateSupportMessageHandler_AppendsRegardlessOfStatus(t *testing.T) {
	now := time.Now().UTC()
	threadID := newUUID()

	fakeRepo := &fakeSupportRepo{}
	fakeRepo.createMsgFn = func(ctx context.Context, ownerID, tID, authorID string, req support.CreateThreadMessageRequest) (support.ThreadMessage, error) {
		// the repo never sees thread status; closed threads accept messages too
		return support.ThreadMessage{ID: newUUID(), ThreadID: tID, AuthorID: authorID, Body: req.Body, CreatedAt: now}, nil
	}

	h := handlers.NewSupportHandler(fakeRepo)
	r := setupRouter(http.MethodPost, "/support/threads/:id/messages", testContext(), h.CreateMessage)

	req := httptest.NewRequest(http.MethodPost, "/support/threads/"+threadID+"/messages",
		bytes.NewBufferString(`{"body": "any update?"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
}
