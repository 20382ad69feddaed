package support

import (
	"errors"
	"time"
)

type ThreadStatus string

const (
	StatusOpen   ThreadStatus = "open"
	StatusClosed ThreadStatus = "closed"
)

// Thread has exactly two states. Close and reopen are caller initiated,
// there is no terminal state, and a reopened thread behaves exactly
// like one that was never closed.
type Thread struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Subject   string       `json:"subject"`
	Status    ThreadStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type ThreadMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("support thread not found")

type CreateThreadRequest struct {
	Subject string `json:"subject" binding:"required,min=1,max=300"`
	Body    string `json:"body" binding:"omitempty,max=10000"`
}

type CreateThreadMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}
