// Package tasklists declares the server-side repository contract for task
// lists.
package tasklists

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository defines persistence operations for task lists. SelectByUser is
// owner-scoped in the query predicate; GetByID is unscoped and the service
// applies the ownership guard after the load.
type Repository interface {
	// Create persists a new task list and returns it with its generated ID.
	Create(ctx context.Context, list *models.TaskList) (*models.TaskList, error)

	// GetByID looks a task list up by its ID regardless of owner.
	// Returns common.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*models.TaskList, error)

	// SelectByUser returns all task lists owned by userID.
	SelectByUser(ctx context.Context, userID string) ([]*models.TaskList, error)

	// Update renames a task list. Returns common.ErrNotFound when no row
	// matches.
	Update(ctx context.Context, list *models.TaskList) (*models.TaskList, error)

	// Delete removes a task list by ID.
	Delete(ctx context.Context, id string) error
}
