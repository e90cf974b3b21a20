package depreciation

import (
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
)

// Permission codes
const (
	PermissionManage = "depreciation:manage"
	PermissionView   = "depreciation:view"
	PermissionUsage  = "depreciation:usage"
)

// Actor is the authenticated caller of an application operation
type Actor struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Permissions []string
}

// NewActor creates an Actor
func NewActor(tenantID, userID uuid.UUID, permissions []string) Actor {
	return Actor{TenantID: tenantID, UserID: userID, Permissions: permissions}
}

// Can reports whether the actor holds the permission. Manage implies every
// other depreciation permission.
func (a Actor) Can(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission || p == PermissionManage || p == "*" {
			return true
		}
	}
	return false
}

func (a Actor) require(permission string) error {
	if a.TenantID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	if !a.Can(permission) {
		return shared.ErrPermissionDenied
	}
	return nil
}
