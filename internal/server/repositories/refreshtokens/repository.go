// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. Rows are never deleted; revocation flips a flag and the
// row is retained for audit.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a non-revoked refresh token by its opaque token string.
	// Implementations return common.ErrNotFound for unknown or revoked
	// tokens. Expiry is NOT filtered here; the caller checks it against its
	// own clock so that clock-skew handling stays centralized.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks a refresh token revoked. Revoking an unknown or
	// already-revoked token is a no-op, never an error.
	Revoke(ctx context.Context, token string) error
}
