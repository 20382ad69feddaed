package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type TaskCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

type JobCursor struct {
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
}

func EncodeTaskCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(TaskCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeTaskCursor(cursor string) (TaskCursor, error) {
	if cursor == "" {
		return TaskCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return TaskCursor{}, err
	}

	var c TaskCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return TaskCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return TaskCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}

func EncodeJobCursor(updatedAt time.Time, id string) (string, error) {
	b, err := json.Marshal(JobCursor{UpdatedAt: updatedAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeJobCursor(cursor string) (JobCursor, error) {
	if cursor == "" {
		return JobCursor{}, errors.New("empty cursor")
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return JobCursor{}, err
	}
	var c JobCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return JobCursor{}, err
	}
	if c.ID == "" || c.UpdatedAt.IsZero() {
		return JobCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)

	return err == nil
}
