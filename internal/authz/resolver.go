package authz

import "context"

// Resolver turns a user id into its effective authorization snapshot by
// following user -> role -> grants in the grant store. A missing user or role
// resolves to the unknown snapshot with empty sets: absence is the normal deny
// path, not a fault. Only store failures return an error, always wrapped as
// *DataAccessError by the store implementation.
type Resolver struct {
	store GrantStore
}

// NewResolver constructs a Resolver over the given store.
func NewResolver(store GrantStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the user's role and its grant sets. It never mutates the
// store.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (RoleInfo, error) {
	userRole, found, err := r.store.FindUserWithRole(ctx, userID)
	if err != nil {
		return RoleInfo{}, err
	}
	if !found {
		return unknownRoleInfo(), nil
	}

	tag := ParseRoleCode(userRole.RoleCode)
	if tag == RoleUnknown {
		return unknownRoleInfo(), nil
	}

	permissions, err := r.store.FindActivePermissions(ctx, userRole.RoleCode)
	if err != nil {
		return RoleInfo{}, err
	}
	privileges, err := r.store.FindPrivileges(ctx, userRole.RoleCode)
	if err != nil {
		return RoleInfo{}, err
	}

	return NewRoleInfo(tag, userRole.Active, permissions, privileges), nil
}
