package contact

import (
	"errors"
	"time"
)

type Contact struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Email     string            `json:"email,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Company   string            `json:"company,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

var ErrNotFound = errors.New("contact not found")

type CreateContactRequest struct {
	Name     string            `json:"name" binding:"required,min=1,max=200"`
	Email    string            `json:"email" binding:"omitempty,email"`
	Phone    string            `json:"phone" binding:"omitempty,max=40"`
	Company  string            `json:"company" binding:"omitempty,max=200"`
	Notes    string            `json:"notes" binding:"omitempty,max=5000"`
	Metadata map[string]string `json:"metadata" binding:"omitempty,max=20,dive,keys,max=60,endkeys,max=500"`
}

type UpdateContactRequest struct {
	Name     string            `json:"name" binding:"required,min=1,max=200"`
	Email    string            `json:"email" binding:"omitempty,email"`
	Phone    string            `json:"phone" binding:"omitempty,max=40"`
	Company  string            `json:"company" binding:"omitempty,max=200"`
	Notes    string            `json:"notes" binding:"omitempty,max=5000"`
	Metadata map[string]string `json:"metadata" binding:"omitempty,max=20,dive,keys,max=60,endkeys,max=500"`
}
