package note

import (
	"errors"
	"time"
)

// Note carries a monotonic version so two sessions editing the same
// note cannot silently overwrite each other. Updates must present the
// version they read; a mismatch is a conflict, not a lost write.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound        = errors.New("note not found")
	ErrVersionConflict = errors.New("note was modified since it was read")
)

type CreateNoteRequest struct {
	Title  string `json:"title" binding:"required,min=1,max=200"`
	Body   string `json:"body" binding:"omitempty,max=100000"`
	Pinned bool   `json:"pinned"`
}

type UpdateNoteRequest struct {
	Title  string `json:"title" binding:"required,min=1,max=200"`
	Body   string `json:"body" binding:"omitempty,max=100000"`
	Pinned bool   `json:"pinned"`
	// version the client read; the update only applies if it still matches
	Version int `json:"version" binding:"required,min=1"`
}
