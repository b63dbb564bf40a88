// Package users declares the server-side repository contract for account
// identities.
package users

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user and returns it with its generated ID.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks a user up by email (case-sensitive, as stored).
	// Implementations return common.ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks a user up by its ID.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ExistsByEmail reports whether a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
