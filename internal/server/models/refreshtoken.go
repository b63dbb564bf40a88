package models

import "time"

// RefreshToken is a persisted refresh credential. Rows are never deleted;
// revocation flips Revoked and the row is kept for audit. A token is valid
// iff Revoked is false and Expires is in the future.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	Revoked   bool
	CreatedAt time.Time
}
