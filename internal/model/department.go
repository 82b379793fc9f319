package model

import "time"

// Department is an independently-owned reference entity. Documents and
// users point at it by id; it is never owned by either.
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
