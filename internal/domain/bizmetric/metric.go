package bizmetric

import (
	"errors"
	"time"
)

// Metric is one business datapoint, e.g. ("mrr", 2026-08, 1250.00).
type Metric struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Period    string    `json:"period"` // YYYY-MM
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary aggregates all datapoints of one metric name.
type Summary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Latest  float64 `json:"latest"`
}

var ErrNotFound = errors.New("business metric not found")

type CreateMetricRequest struct {
	Name   string  `json:"name" binding:"required,min=1,max=120"`
	Value  float64 `json:"value"`
	Period string  `json:"period" binding:"required,len=7"`
}

type UpdateMetricRequest struct {
	Name   string  `json:"name" binding:"required,min=1,max=120"`
	Value  float64 `json:"value"`
	Period string  `json:"period" binding:"required,len=7"`
}
