// Package authz implements the ownership check applied to every task and
// task list operation. The policy is exact equality of the acting user and
// the resource owner; there are no roles, admin overrides, or delegation.
package authz

import "github.com/dmitrijs2005/tasklist/internal/common"

// Authorize returns nil when actorID owns the resource and
// common.ErrForbidden otherwise. It must be called after the resource is
// located and before any field is returned or mutation applied.
//
// A cross-tenant access is a hard authorization failure, never a silent
// no-op and never a "not found".
func Authorize(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return common.ErrForbidden
	}
	return nil
}
