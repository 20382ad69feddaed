package calendar

import (
	"errors"
	"time"
)

type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	AllDay    bool      `json:"allDay"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("calendar event not found")
	ErrInvalidRange = errors.New("event ends before it starts")
)

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

type CreateEventRequest struct {
	Title    string    `json:"title" binding:"required,min=1,max=200"`
	Location string    `json:"location" binding:"omitempty,max=200"`
	Notes    string    `json:"notes" binding:"omitempty,max=2000"`
	StartAt  time.Time `json:"startAt" binding:"required"`
	EndAt    time.Time `json:"endAt" binding:"required"`
	AllDay   bool      `json:"allDay"`
}

type UpdateEventRequest struct {
	Title    string    `json:"title" binding:"required,min=1,max=200"`
	Location string    `json:"location" binding:"omitempty,max=200"`
	Notes    string    `json:"notes" binding:"omitempty,max=2000"`
	StartAt  time.Time `json:"startAt" binding:"required"`
	EndAt    time.Time `json:"endAt" binding:"required"`
	AllDay   bool      `json:"allDay"`
}

// Validate covers what binding tags cannot express.
func (r CreateEventRequest) Validate() error {
	if r.EndAt.Before(r.StartAt) {
		return ErrInvalidRange
	}
	return nil
}

func (r UpdateEventRequest) Validate() error {
	if r.EndAt.Before(r.StartAt) {
		return ErrInvalidRange
	}
	return nil
}
