package document

import (
	"errors"
	"time"
)

// SecureDocument is a named bundle of labeled fields (licence numbers,
// policy ids, that kind of thing). Fields live in their own table and
// are only reachable through a document the effective owner holds.
type SecureDocument struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Field struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Label      string    `json:"label"`
	Value      string    `json:"value"`
	Secret     bool      `json:"secret"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("document not found")
	ErrFieldNotFound = errors.New("document field not found")
)

type CreateDocumentRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"omitempty,max=80"`
}

type UpdateDocumentRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"omitempty,max=80"`
}

type CreateFieldRequest struct {
	Label  string `json:"label" binding:"required,min=1,max=120"`
	Value  string `json:"value" binding:"omitempty,max=5000"`
	Secret bool   `json:"secret"`
}

type UpdateFieldRequest struct {
	Label  string `json:"label" binding:"required,min=1,max=120"`
	Value  string `json:"value" binding:"omitempty,max=5000"`
	Secret bool   `json:"secret"`
}
