package audit

import (
	"errors"
	"time"
)

// Record is one life-audit line: a life area scored on the Fibonacci
// scale the tool uses everywhere.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("life audit record not found")
	ErrInvalidScore = errors.New("score must be a fibonacci value")
)

// the scoring UI only offers these values
var fibScores = map[int]struct{}{
	1: {}, 2: {}, 3: {}, 5: {}, 8: {}, 13: {}, 21: {},
}

func ValidScore(score int) bool {
	_, ok := fibScores[score]
	return ok
}

type CreateRecordRequest struct {
	Category string `json:"category" binding:"required,min=1,max=120"`
	Score    int    `json:"score" binding:"required"`
	Comment  string `json:"comment" binding:"omitempty,max=2000"`
}

type UpdateRecordRequest struct {
	Category string `json:"category" binding:"required,min=1,max=120"`
	Score    int    `json:"score" binding:"required"`
	Comment  string `json:"comment" binding:"omitempty,max=2000"`
}
