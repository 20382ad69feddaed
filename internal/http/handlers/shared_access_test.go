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

	"github.com/lifehubhq/lifehub/internal/access"
	"github.com/lifehubhq/lifehub/internal/domain/grant"
	"github.com/lifehubhq/lifehub/internal/domain/job"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
)

type fakeGrantsRepo struct {
	grantFn          func(ctx context.Context, ownerID, email string) (grant.AccessGrant, error)
	revokeFn         func(ctx context.Context, ownerID, email string) error
	listGrantsFn     func(ctx context.Context, ownerID string) ([]grant.AccessGrant, error)
	grantsForEmailFn func(ctx context.Context, email string) ([]grant.AccessGrant, error)
}

func (f *fakeGrantsRepo) Grant(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
	if f.grantFn != nil {
		return f.grantFn(ctx, ownerID, email)
	}

	return grant.AccessGrant{}, nil
}

func (f *fakeGrantsRepo) Revoke(ctx context.Context, ownerID, email string) error {
	if f.revokeFn != nil {
		return f.revokeFn(ctx, ownerID, email)
	}

	return nil
}

func (f *fakeGrantsRepo) ListGrants(ctx context.Context, ownerID string) ([]grant.AccessGrant, error) {
	if f.listGrantsFn != nil {
		return f.listGrantsFn(ctx, ownerID)
	}

	return []grant.AccessGrant{}, nil
}

func (f *fakeGrantsRepo) GrantsForEmail(ctx context.Context, email string) ([]grant.AccessGrant, error) {
	if f.grantsForEmailFn != nil {
		return f.grantsForEmailFn(ctx, email)
	}

	return []grant.AccessGrant{}, nil
}

type fakeOwnerEmails struct {
	emailByIDFn func(ctx context.Context, userID string) (string, error)
}

func (f *fakeOwnerEmails) EmailByID(ctx context.Context, userID string) (string, error) {
	if f.emailByIDFn != nil {
		return f.emailByIDFn(ctx, userID)
	}

	return "", errors.New("unknown user")
}

type fakeJobsEnqueuer struct {
	createFn func(ctx context.Context, req job.CreateRequest) (job.Job, error)
	created  []job.CreateRequest
}

func (f *fakeJobsEnqueuer) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	f.created = append(f.created, req)

	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return job.Job{ID: newUUID()}, nil
}

func selfContext() access.EffectiveContext {
	return access.EffectiveContext{
		CallerID:         "caller-1",
		CallerEmail:      "caller@example.com",
		EffectiveOwnerID: "caller-1",
		OwnerEmail:       "caller@example.com",
		ViewingOwnData:   true,
	}
}

func TestGrantAccessHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeGrantsRepo)
		wantStatusCode int
		wantJobs       int
	}{
		{
			name: "success_enqueues_invitation",
			body: `{"email": "helper@example.com"}`,
			repoSetup: func(f *fakeGrantsRepo) {
				f.grantFn = func(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
					return grant.AccessGrant{OwnerID: ownerID, GranteeEmail: email, GrantedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
			wantJobs:       1,
		},
		{
			name:           "self_grant_rejected",
			body:           `{"email": "caller@example.com"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
			wantJobs:       0,
		},
		{
			// email comparison is case-insensitive
			name:           "self_grant_rejected_case_insensitive",
			body:           `{"email": "CALLER@example.com"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
			wantJobs:       0,
		},
		{
			name:           "invalid_email",
			body:           `{"email": "not-an-email"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
			wantJobs:       0,
		},
		{
			name: "repo_error",
			body: `{"email": "helper@example.com"}`,
			repoSetup: func(f *fakeGrantsRepo) {
				f.grantFn = func(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
					return grant.AccessGrant{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantJobs:       0,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeGrants := &fakeGrantsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeGrants)
			}

			enqueuer := &fakeJobsEnqueuer{}

			h := handlers.NewSharedAccessHandler(fakeGrants, &fakeOwnerEmails{}, enqueuer)
			r := setupRouter(http.MethodPost, "/shared-access", selfContext(), h.GrantAccess)

			req := httptest.NewRequest(http.MethodPost, "/shared-access", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(enqueuer.created) != tt.wantJobs {
				t.Fatalf("got %d enqueued jobs, want %d", len(enqueuer.created), tt.wantJobs)
			}

			if tt.wantJobs > 0 {
				created := enqueuer.created[0]

				if created.Type != "share_invitation" {
					t.Fatalf("unexpected job type %q", created.Type)
				}

				if created.IdempotencyKey == nil || *created.IdempotencyKey == "" {
					t.Fatalf("invitation job should carry an idempotency key")
				}
			}
		})
	}
}

func TestGrantAccessHandler_EnqueueFailureDoesNotFailGrant(t *testing.T) {
	now := time.Now().UTC()

	fakeGrants := &fakeGrantsRepo{}
	fakeGrants.grantFn = func(ctx context.Context, ownerID, email string) (grant.AccessGrant, error) {
		return grant.AccessGrant{OwnerID: ownerID, GranteeEmail: email, GrantedAt: now}, nil
	}

	enqueuer := &fakeJobsEnqueuer{}
	enqueuer.createFn = func(ctx context.Context, req job.CreateRequest) (job.Job, error) {
		return job.Job{}, errors.New("queue down")
	}

	h := handlers.NewSharedAccessHandler(fakeGrants, &fakeOwnerEmails{}, enqueuer)
	r := setupRouter(http.MethodPost, "/shared-access", selfContext(), h.GrantAccess)

	req := httptest.NewRequest(http.MethodPost, "/shared-access",
		bytes.NewBufferString(`{"email": "helper@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// the grant stands even when the invitation could not be queued

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestRevokeAccessHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeGrantsRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email": "helper@example.com"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusNoContent,
		},
		{
			// revoking a grant that never existed still succeeds
			name: "absent_grant_is_noop",
			body: `{"email": "stranger@example.com"}`,
			repoSetup: func(f *fakeGrantsRepo) {
				f.revokeFn = func(ctx context.Context, ownerID, email string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:           "invalid_email",
			body:           `{"email": ""}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"email": "helper@example.com"}`,
			repoSetup: func(f *fakeGrantsRepo) {
				f.revokeFn = func(ctx context.Context, ownerID, email string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeGrants := &fakeGrantsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeGrants)
			}

			h := handlers.NewSharedAccessHandler(fakeGrants, &fakeOwnerEmails{}, &fakeJobsEnqueuer{})
			r := setupRouter(http.MethodDelete, "/shared-access", selfContext(), h.RevokeAccess)

			req := httptest.NewRequest(http.MethodDelete, "/shared-access", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUserContextHandler(t *testing.T) {
	now := time.Now().UTC()

	t.Run("lists_self_plus_granting_owners", func(t *testing.T) {
		fakeGrants := &fakeGrantsRepo{}
		fakeGrants.grantsForEmailFn = func(ctx context.Context, email string) ([]grant.AccessGrant, error) {
			return []grant.AccessGrant{
				{OwnerID: "owner-a", GranteeEmail: email, GrantedAt: now},
				{OwnerID: "owner-b", GranteeEmail: email, GrantedAt: now.Add(-time.Hour)},
			}, nil
		}

		owners := &fakeOwnerEmails{}
		owners.emailByIDFn = func(ctx context.Context, userID string) (string, error) {
			switch userID {
			case "owner-a":
				return "a@example.com", nil
			case "owner-b":
				return "b@example.com", nil
			}
			return "", errors.New("unknown user")
		}

		h := handlers.NewSharedAccessHandler(fakeGrants, owners, &fakeJobsEnqueuer{})
		r := setupRouter(http.MethodGet, "/user-context", selfContext(), h.UserContext)

		req := httptest.NewRequest(http.MethodGet, "/user-context", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			ViewingOwnData    bool     `json:"viewingOwnData"`
			DataOwnerEmail    string   `json:"dataOwnerEmail"`
			AvailableContexts []string `json:"availableContexts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		want := []string{"self", "a@example.com", "b@example.com"}

		if len(resp.AvailableContexts) != len(want) {
			t.Fatalf("got contexts %v, want %v", resp.AvailableContexts, want)
		}

		for i, v := range want {
			if resp.AvailableContexts[i] != v {
				t.Fatalf("contexts[%d]=%q, want %q", i, resp.AvailableContexts[i], v)
			}
		}

		if !resp.ViewingOwnData {
			t.Fatalf("self context should report viewingOwnData")
		}
	})

	t.Run("borrowed_context_reports_owner", func(t *testing.T) {
		fakeGrants := &fakeGrantsRepo{}

		h := handlers.NewSharedAccessHandler(fakeGrants, &fakeOwnerEmails{}, &fakeJobsEnqueuer{})
		r := setupRouter(http.MethodGet, "/user-context", testContext(), h.UserContext)

		req := httptest.NewRequest(http.MethodGet, "/user-context", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			ViewingOwnData bool   `json:"viewingOwnData"`
			DataOwnerEmail string `json:"dataOwnerEmail"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if resp.ViewingOwnData {
			t.Fatalf("borrowed context should not report own data")
		}

		if resp.DataOwnerEmail != "owner@example.com" {
			t.Fatalf("got dataOwnerEmail %q, want owner@example.com", resp.DataOwnerEmail)
		}
	})
}
