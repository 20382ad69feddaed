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

	"github.com/lifehubhq/lifehub/internal/domain/chat"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
)

type fakeChatRepo struct {
	createConvFn  func(ctx context.Context, ownerID string, req chat.CreateConversationRequest) (chat.Conversation, error)
	listConvsFn   func(ctx context.Context, ownerID string) ([]chat.Conversation, error)
	getConvFn     func(ctx context.Context, ownerID, id string) (chat.Conversation, error)
	deleteConvFn  func(ctx context.Context, ownerID, id string) error
	createMsgFn   func(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error)
	listMessagesFn func(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error)
}

func (f *fakeChatRepo) CreateConversation(ctx context.Context, ownerID string, req chat.CreateConversationRequest) (chat.Conversation, error) {
	if f.createConvFn != nil {
		return f.createConvFn(ctx, ownerID, req)
	}

	return chat.Conversation{}, nil
}

func (f *fakeChatRepo) ListConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	if f.listConvsFn != nil {
		return f.listConvsFn(ctx, ownerID)
	}

	return []chat.Conversation{}, nil
}

func (f *fakeChatRepo) GetConversation(ctx context.Context, ownerID, id string) (chat.Conversation, error) {
	if f.getConvFn != nil {
		return f.getConvFn(ctx, ownerID, id)
	}

	return chat.Conversation{}, nil
}

func (f *fakeChatRepo) DeleteConversation(ctx context.Context, ownerID, id string) error {
	if f.deleteConvFn != nil {
		return f.deleteConvFn(ctx, ownerID, id)
	}

	return nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error) {
	if f.createMsgFn != nil {
		return f.createMsgFn(ctx, ownerID, conversationID, authorID, req)
	}

	return chat.Message{}, nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error) {
	if f.listMessagesFn != nil {
		return f.listMessagesFn(ctx, ownerID, conversationID, filter)
	}

	return []chat.Message{}, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishChatChange(ctx context.Context, ownerID, conversationID string) error {
	p.published = append(p.published, ownerID+"/"+conversationID)
	return p.err
}

func TestCreateChatMessageHandler(t *testing.T) {
	now := time.Now().UTC()
	convID := newUUID()

	t.Run("author_is_caller_not_owner", func(t *testing.T) {
		fakeRepo := &fakeChatRepo{}
		fakeRepo.createMsgFn = func(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error) {
			// storage scopes on the owner, authorship stays with the caller
			if ownerID != "owner-1" {
				return chat.Message{}, errors.New("wrong owner: " + ownerID)
			}

			if authorID != "caller-1" {
				return chat.Message{}, errors.New("wrong author: " + authorID)
			}

			return chat.Message{
				ID:             newUUID(),
				ConversationID: conversationID,
				AuthorID:       authorID,
				Body:           req.Body,
				CreatedAt:      now,
			}, nil
		}

		pub := &fakePublisher{}

		h := handlers.NewChatHandler(fakeRepo, pub)
		r := setupRouter(http.MethodPost, "/chat/conversations/:id/messages", testContext(), h.CreateMessage)

		req := httptest.NewRequest(http.MethodPost, "/chat/conversations/"+convID+"/messages",
			bytes.NewBufferString(`{"body": "hello"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		if len(pub.published) != 1 || pub.published[0] != "owner-1/"+convID {
			t.Fatalf("expected one change published for the owner account, got %v", pub.published)
		}
	})

	t.Run("publish_failure_does_not_fail_request", func(t *testing.T) {
		fakeRepo := &fakeChatRepo{}
		pub := &fakePublisher{err: errors.New("redis down")}

		h := handlers.NewChatHandler(fakeRepo, pub)
		r := setupRouter(http.MethodPost, "/chat/conversations/:id/messages", testContext(), h.CreateMessage)

		req := httptest.NewRequest(http.MethodPost, "/chat/conversations/"+convID+"/messages",
			bytes.NewBufferString(`{"body": "hello"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}
	})

	t.Run("nil_publisher_is_fine", func(t *testing.T) {
		fakeRepo := &fakeChatRepo{}

		h := handlers.NewChatHandler(fakeRepo, nil)
		r := setupRouter(http.MethodPost, "/chat/conversations/:id/messages", testContext(), h.CreateMessage)

		req := httptest.NewRequest(http.MethodPost, "/chat/conversations/"+convID+"/messages",
			bytes.NewBufferString(`{"body": "hello"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}
	})

	t.Run("conversation_not_found", func(t *testing.T) {
		fakeRepo := &fakeChatRepo{}
		fakeRepo.createMsgFn = func(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error) {
			return chat.Message{}, chat.ErrConversationNotFound
		}

		h := handlers.NewChatHandler(fakeRepo, nil)
		r := setupRouter(http.MethodPost, "/chat/conversations/:id/messages", testContext(), h.CreateMessage)

		req := httptest.NewRequest(http.MethodPost, "/chat/conversations/"+convID+"/messages",
			bytes.NewBufferString(`{"body": "hello"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusNotFound, w.Body.String())
		}
	})
}

func TestListChatMessagesHandler(t *testing.T) {
	now := time.Now().UTC()
	convID := newUUID()
	afterID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeChatRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success_defaults",
			url:  "/chat/conversations/" + convID + "/messages",
			repoSetup: func(f *fakeChatRepo) {
				f.listMessagesFn = func(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error) {
					if filter.AfterID != nil {
						return nil, errors.New("afterID should be nil without a param")
					}

					if filter.Limit != 100 {
						return nil, errors.New("default limit not applied")
					}

					return []chat.Message{
						{ID: newUUID(), ConversationID: conversationID, AuthorID: "caller-1", Body: "hi", CreatedAt: now},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_after_cursor",
			url:  "/chat/conversations/" + convID + "/messages?after=" + afterID + "&limit=10",
			repoSetup: func(f *fakeChatRepo) {
				f.listMessagesFn = func(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error) {
					if filter.AfterID == nil || *filter.AfterID != afterID {
						return nil, errors.New("afterID not passed")
					}

					if filter.Limit != 10 {
						return nil, errors.New("limit not passed")
					}

					return []chat.Message{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name:           "after_must_be_uuid",
			url:            "/chat/conversations/" + convID + "/messages?after=latest",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "limit_out_of_range",
			url:            "/chat/conversations/" + convID + "/messages?limit=501",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "conversation_not_found",
			url:  "/chat/conversations/" + convID + "/messages",
			repoSetup: func(f *fakeChatRepo) {
				f.listMessagesFn = func(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error) {
					return nil, chat.ErrConversationNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeChatRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewChatHandler(fakeRepo, nil)
			r := setupRouter(http.MethodGet, "/chat/conversations/:id/messages", testContext(), h.ListMessages)

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
