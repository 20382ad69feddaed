package chat

import (
	"errors"
	"time"
)

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	AuthorID       string    `json:"authorId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type CreateConversationRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
}

type CreateMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}

// MessageFilter drives the sidebar's polling: "everything after the
// last message I have seen", oldest first.
type MessageFilter struct {
	AfterID *string
	Limit   int
}
