package httpapi

import "context"

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user ID stored by the bearer
// middleware, or "" if the request was not authenticated.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
