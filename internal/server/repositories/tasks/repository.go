// Package tasks declares the server-side repository contract for tasks.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository defines persistence operations for tasks. Select* methods are
// scoped by user in the query predicate itself, so they can never return
// another tenant's rows. GetByID is unscoped on purpose: the service loads
// the row and applies the ownership guard explicitly.
type Repository interface {
	// Create persists a new task and returns it with its generated ID.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// GetByID looks a task up by its ID regardless of owner.
	// Returns common.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// SelectByUser returns all tasks owned by userID.
	SelectByUser(ctx context.Context, userID string) ([]*models.Task, error)

	// SelectByUserAndList returns userID's tasks in the named list.
	SelectByUserAndList(ctx context.Context, userID, listName string) ([]*models.Task, error)

	// SelectByUserAndCompleted returns userID's tasks filtered by the
	// completed flag.
	SelectByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]*models.Task, error)

	// ListNames returns the distinct list names userID has tasks in.
	ListNames(ctx context.Context, userID string) ([]string, error)

	// ExistsByUserListTitle reports whether userID already has a task with
	// the given title in the named list.
	ExistsByUserListTitle(ctx context.Context, userID, listName, title string) (bool, error)

	// Update persists changes to title, description, list name and
	// completion state. Returns common.ErrNotFound when no row matches.
	Update(ctx context.Context, task *models.Task) (*models.Task, error)

	// Delete removes a task by ID.
	Delete(ctx context.Context, id string) error
}
