package models

import "time"

// TaskList is a named grouping of tasks owned by a single user.
type TaskList struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
