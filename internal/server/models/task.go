package models

import "time"

// Task belongs to exactly one user. UserID is set at creation and never
// reassigned.
type Task struct {
	ID          string
	UserID      string
	ListName    string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
