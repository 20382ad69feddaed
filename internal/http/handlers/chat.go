package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/domain/chat"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/utils"
)

type ChatStore interface {
	CreateConversation(ctx context.Context, ownerID string, req chat.CreateConversationRequest) (chat.Conversation, error)
	ListConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error)
	GetConversation(ctx context.Context, ownerID, id string) (chat.Conversation, error)
	DeleteConversation(ctx context.Context, ownerID, id string) error
	CreateMessage(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error)
	ListMessages(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error)
}

// ChangePublisher pushes "something changed in this conversation" to
// other sessions polling the same account.
type ChangePublisher interface {
	PublishChatChange(ctx context.Context, ownerID, conversationID string) error
}

type ChatHandler struct {
	repo      ChatStore
	publisher ChangePublisher
}

func NewChatHandler(repo ChatStore, publisher ChangePublisher) *ChatHandler {
	return &ChatHandler{repo: repo, publisher: publisher}
}

// POST /chat/conversations

func (h *ChatHandler) CreateConversation(ctx *gin.Context) {
	var req chat.CreateConversationRequest

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

	c, err := h.repo.CreateConversation(cctx, ec.EffectiveOwnerID, req)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

// GET /chat/conversations

func (h *ChatHandler) ListConversations(ctx *gin.Context) {
	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	items, err := h.repo.ListConversations(cctx, ec.EffectiveOwnerID)

	if err != nil {
		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GET /chat/conversations/:id

func (h *ChatHandler) GetConversation(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Conversation not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	c, err := h.repo.GetConversation(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == chat.ErrConversationNotFound {
			RespondNotFound(ctx, "Conversation not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// DELETE /chat/conversations/:id

func (h *ChatHandler) DeleteConversation(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Conversation not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.DeleteConversation(cctx, ec.EffectiveOwnerID, id)

	if err != nil {
		if err == chat.ErrConversationNotFound {
			RespondNotFound(ctx, "Conversation not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// POST /chat/conversations/:id/messages
//
// The author is always the caller, even on a borrowed context: an
// assistant writing in their client's account still signs their own
// name.

func (h *ChatHandler) CreateMessage(ctx *gin.Context) {
	conversationID := ctx.Param("id")

	if !utils.IsUUID(conversationID) {
		RespondNotFound(ctx, "Conversation not found")
		return
	}

	var req chat.CreateMessageRequest

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

	m, err := h.repo.CreateMessage(cctx, ec.EffectiveOwnerID, conversationID, ec.CallerID, req)

	if err != nil {
		if err == chat.ErrConversationNotFound {
			RespondNotFound(ctx, "Conversation not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	if h.publisher != nil {
		if perr := h.publisher.PublishChatChange(cctx, ec.EffectiveOwnerID, conversationID); perr != nil {
			// the message is stored; pollers just pick it up a cycle later
			slog.Default().WarnContext(cctx, "chat.publish_failed",
				"error", perr,
				"conversation_id", conversationID,
			)
		}
	}

	ctx.JSON(http.StatusCreated, m)
}

// GET /chat/conversations/:id/messages?after=&limit=

func (h *ChatHandler) ListMessages(ctx *gin.Context) {
	conversationID := ctx.Param("id")

	if !utils.IsUUID(conversationID) {
		RespondNotFound(ctx, "Conversation not found")
		return
	}

	ec, ok := middlewares.AccessContextFrom(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var filter chat.MessageFilter

	if raw := ctx.Query("after"); raw != "" {
		if !utils.IsUUID(raw) {
			RespondBadRequest(ctx, "after must be a message id", nil)
			return
		}

		filter.AfterID = &raw
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

	messages, err := h.repo.ListMessages(cctx, ec.EffectiveOwnerID, conversationID, filter)

	if err != nil {
		if err == chat.ErrConversationNotFound {
			RespondNotFound(ctx, "Conversation not found")
			return
		}

		RespondStorageUnavailable(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": messages,
		"count": len(messages),
	})
}
