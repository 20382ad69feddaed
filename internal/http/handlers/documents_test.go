package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifehubhq/lifehub/internal/domain/document"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
)

type fakeDocumentsRepo struct {
	createFn      func(ctx context.Context, ownerID string, req document.CreateDocumentRequest) (document.SecureDocument, error)
	listFn        func(ctx context.Context, ownerID string) ([]document.SecureDocument, error)
	getFn         func(ctx context.Context, ownerID, id string) (document.SecureDocument, error)
	updateFn      func(ctx context.Context, ownerID, id string, req document.UpdateDocumentRequest) (document.SecureDocument, error)
	deleteFn      func(ctx context.Context, ownerID, id string) error
	createFieldFn func(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error)
	listFieldsFn  func(ctx context.Context, ownerID, documentID string) ([]document.Field, error)
	updateFieldFn func(ctx context.Context, ownerID, documentID, fieldID string, req document.UpdateFieldRequest) (document.Field, error)
	deleteFieldFn func(ctx context.Context, ownerID, documentID, fieldID string) error
}

func (f *fakeDocumentsRepo) Create(ctx context.Context, ownerID string, req document.CreateDocumentRequest) (document.SecureDocument, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}

	return document.SecureDocument{}, nil
}

func (f *fakeDocumentsRepo) List(ctx context.Context, ownerID string) ([]document.SecureDocument, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}

	return []document.SecureDocument{}, nil
}

func (f *fakeDocumentsRepo) GetByID(ctx context.Context, ownerID, id string) (document.SecureDocument, error) {
	if f.getFn != nil {
		return f.getFn(ctx, ownerID, id)
	}

	return document.SecureDocument{}, nil
}

func (f *fakeDocumentsRepo) Update(ctx context.Context, ownerID, id string, req document.UpdateDocumentRequest) (document.SecureDocument, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, ownerID, id, req)
	}

	return document.SecureDocument{}, nil
}

func (f *fakeDocumentsRepo) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, ownerID, id)
	}

	return nil
}

func (f *fakeDocumentsRepo) CreateField(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error) {
	if f.createFieldFn != nil {
		return f.createFieldFn(ctx, ownerID, documentID, req)
	}

	return document.Field{}, nil
}

func (f *fakeDocumentsRepo) ListFields(ctx context.Context, ownerID, documentID string) ([]document.Field, error) {
	if f.listFieldsFn != nil {
		return f.listFieldsFn(ctx, ownerID, documentID)
	}

	return []document.Field{}, nil
}

func (f *fakeDocumentsRepo) UpdateField(ctx context.Context, ownerID, documentID, fieldID string, req document.UpdateFieldRequest) (document.Field, error) {
	if f.updateFieldFn != nil {
		return f.updateFieldFn(ctx, ownerID, documentID, fieldID, req)
	}

	return document.Field{}, nil
}

func (f *fakeDocumentsRepo) DeleteField(ctx context.Context, ownerID, documentID, fieldID string) error {
	if f.deleteFieldFn != nil {
		return f.deleteFieldFn(ctx, ownerID, documentID, fieldID)
	}

	return nil
}

func TestCreateDocumentFieldHandler(t *testing.T) {
	now := time.Now().UTC()
	docID := newUUID()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeDocumentsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/documents/" + docID + "/fields",
			body: `{"label": "Card number", "value": "4111", "secret": true}`,
			repoSetup: func(f *fakeDocumentsRepo) {
				f.createFieldFn = func(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error) {
					if documentID != docID {
						return document.Field{}, errors.New("wrong parent document")
					}

					return document.Field{
						ID:         newUUID(),
						DocumentID: documentID,
						Label:      req.Label,
						Value:      req.Value,
						Secret:     req.Secret,
						CreatedAt:  now,
						UpdatedAt:  now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			// a parent document in someone else's account is a 404, never a leak
			name: "foreign_parent_reads_as_not_found",
			url:  "/documents/" + newUUID() + "/fields",
			body: `{"label": "Card number"}`,
			repoSetup: func(f *fakeDocumentsRepo) {
				f.createFieldFn = func(ctx context.Context, ownerID, documentID string, req document.CreateFieldRequest) (document.Field, error) {
					return document.Field{}, document.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_document_id",
			url:            "/documents/not-a-uuid/fields",
			body:           `{"label": "Card number"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			url:            "/documents/" + docID + "/fields",
			body:           `{"label": ""}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeDocumentsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewDocumentsHandler(fakeRepo)
			r := setupRouter(http.MethodPost, "/documents/:id/fields", testContext(), h.CreateField)

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateDocumentFieldHandler(t *testing.T) {
	docID := newUUID()
	fieldID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeDocumentsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/documents/" + docID + "/fields/" + fieldID,
			repoSetup: func(f *fakeDocumentsRepo) {
				f.updateFieldFn = func(ctx context.Context, ownerID, documentID, fID string, req document.UpdateFieldRequest) (document.Field, error) {
					return document.Field{ID: fID, DocumentID: documentID, Label: req.Label, Value: req.Value}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "field_of_missing_parent",
			url:  "/documents/" + docID + "/fields/" + fieldID,
			repoSetup: func(f *fakeDocumentsRepo) {
				f.updateFieldFn = func(ctx context.Context, ownerID, documentID, fID string, req document.UpdateFieldRequest) (document.Field, error) {
					// parent ownership is checked before the field is even looked up
					return document.Field{}, document.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "field_missing",
			url:  "/documents/" + docID + "/fields/" + fieldID,
			repoSetup: func(f *fakeDocumentsRepo) {
				f.updateFieldFn = func(ctx context.Context, ownerID, documentID, fID string, req document.UpdateFieldRequest) (document.Field, error) {
					return document.Field{}, document.ErrFieldNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_field_id",
			url:            "/documents/" + docID + "/fields/nope",
			repoSetup:      nil,
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeDocumentsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewDocumentsHandler(fakeRepo)
			r := setupRouter(http.MethodPatch, "/documents/:id/fields/:fieldId", testContext(), h.UpdateField)

			req := httptest.NewRequest(http.MethodPatch, tt.url, bytes.NewBufferString(`{"label": "PIN", "value": "0000"}`))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
