package healthrec

import (
	"errors"
	"time"
)

type Kind string

const (
	KindWeight   Kind = "weight"
	KindSleep    Kind = "sleep"
	KindWorkout  Kind = "workout"
	KindBloodPct Kind = "blood_pressure"
)

type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Kind       Kind      `json:"kind"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("health record not found")

type ListFilter struct {
	Kind  *Kind
	From  *time.Time
	To    *time.Time
	Limit int
}

type CreateRecordRequest struct {
	Kind       Kind      `json:"kind" binding:"required,oneof=weight sleep workout blood_pressure"`
	Value      float64   `json:"value" binding:"required"`
	Unit       string    `json:"unit" binding:"omitempty,max=20"`
	Note       string    `json:"note" binding:"omitempty,max=2000"`
	RecordedAt time.Time `json:"recordedAt" binding:"required"`
}

type UpdateRecordRequest struct {
	Kind       Kind      `json:"kind" binding:"required,oneof=weight sleep workout blood_pressure"`
	Value      float64   `json:"value" binding:"required"`
	Unit       string    `json:"unit" binding:"omitempty,max=20"`
	Note       string    `json:"note" binding:"omitempty,max=2000"`
	RecordedAt time.Time `json:"recordedAt" binding:"required"`
}
