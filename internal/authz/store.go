package authz

import "context"

// UserRole is the raw user -> role linkage as stored. RoleCode is the role's
// codigo column; Active mirrors the role row's estado flag.
type UserRole struct {
	RoleCode string
	Active   bool
}

// GrantStore is the engine's view of the relational grant tables. The engine
// only ever reads through it at decision time; the assign methods exist for
// deploy-time bootstrap and the role administration endpoints, both of which
// use replace semantics.
type GrantStore interface {
	// FindUserWithRole returns the role linkage for a user, or found=false
	// when the user or its role does not exist. Absence is not an error.
	FindUserWithRole(ctx context.Context, userID int64) (UserRole, bool, error)
	// FindActivePermissions returns permission codes linked to the role,
	// filtered to rows with estado=true.
	FindActivePermissions(ctx context.Context, roleCode string) ([]string, error)
	// FindPrivileges returns privilege codes linked to the role.
	FindPrivileges(ctx context.Context, roleCode string) ([]string, error)

	// AssignPermissionsToRole replaces the role's permission set wholesale.
	AssignPermissionsToRole(ctx context.Context, roleCode string, codes []string) error
	// AssignPrivilegesToRole replaces the role's privilege set wholesale.
	AssignPrivilegesToRole(ctx context.Context, roleCode string, codes []string) error

	// ListPermissionCodes returns every permission code present in the store.
	ListPermissionCodes(ctx context.Context) ([]string, error)
	// ListPrivilegeCodes returns every privilege code present in the store.
	ListPrivilegeCodes(ctx context.Context) ([]string, error)
}
