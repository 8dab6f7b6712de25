package menus

import (
	"context"
	"strings"
)

// RoleSuperAdmin is the only role allowed to delete menus by default.
const RoleSuperAdmin = "super_admin"

// Actor identifies who is performing a mutation. The authentication layer
// resolves it; this package only reads it.
type Actor struct {
	ID   string `json:"id,omitempty"`
	Role string `json:"role,omitempty"`
}

// String returns the identifier used in log entries.
func (a Actor) String() string {
	return strings.TrimSpace(a.ID)
}

// Authorizer decides whether an actor may perform guarded operations.
type Authorizer interface {
	CanDeleteMenu(ctx context.Context, actor Actor, menu *Menu) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, actor Actor, menu *Menu) bool

func (f AuthorizerFunc) CanDeleteMenu(ctx context.Context, actor Actor, menu *Menu) bool {
	return f(ctx, actor, menu)
}

// RoleAuthorizer allows actors holding one of a fixed set of roles.
type RoleAuthorizer struct {
	roles map[string]struct{}
}

// NewRoleAuthorizer returns an authorizer for roles, defaulting to
// super_admin when none are given. Role matching ignores case.
func NewRoleAuthorizer(roles ...string) *RoleAuthorizer {
	set := map[string]struct{}{}
	for _, role := range roles {
		if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
			set[role] = struct{}{}
		}
	}
	if len(set) == 0 {
		set[RoleSuperAdmin] = struct{}{}
	}
	return &RoleAuthorizer{roles: set}
}

func (a *RoleAuthorizer) CanDeleteMenu(_ context.Context, actor Actor, _ *Menu) bool {
	role := strings.ToLower(strings.TrimSpace(actor.Role))
	if role == "" {
		return false
	}
	_, ok := a.roles[role]
	return ok
}
