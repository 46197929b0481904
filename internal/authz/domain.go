// Package authz implements the authorization engine consulted by every
// protected route: a resolver that follows user -> role -> grants in the
// relational store, a TTL-bounded per-user cache in front of it, and the
// boolean decision predicates built on both. Denial is a normal result here;
// only infrastructure faults surface as errors, and callers must treat those
// as deny.
package authz

import "github.com/gymstack/gymstack/internal/authz/catalog"

// RoleTag identifies one of the role archetypes. It is produced exactly once,
// inside the resolver; nothing downstream compares raw role code strings.
type RoleTag int

const (
	RoleUnknown RoleTag = iota
	RoleAdmin
	RoleTrainer
	RoleClient
	RoleBeneficiary
)

// String returns the tag name for logs and responses.
func (t RoleTag) String() string {
	switch t {
	case RoleAdmin:
		return "admin"
	case RoleTrainer:
		return "trainer"
	case RoleClient:
		return "client"
	case RoleBeneficiary:
		return "beneficiary"
	}
	return "unknown"
}

// ParseRoleCode maps a stored role code to its tag. Anything outside the four
// archetypes is RoleUnknown.
func ParseRoleCode(code string) RoleTag {
	switch code {
	case catalog.RoleCodeAdmin:
		return RoleAdmin
	case catalog.RoleCodeTrainer:
		return RoleTrainer
	case catalog.RoleCodeClient:
		return RoleClient
	case catalog.RoleCodeBeneficiary:
		return RoleBeneficiary
	}
	return RoleUnknown
}

// RoleInfo is the resolved authorization snapshot for one user: the role tag,
// whether the role row itself is enabled, and the effective permission and
// privilege sets. It is an immutable value; the cache hands out copies of the
// same underlying maps and nothing mutates them after construction.
type RoleInfo struct {
	Role        RoleTag
	RoleActive  bool
	permissions map[string]struct{}
	privileges  map[string]struct{}
}

// NewRoleInfo builds a snapshot from grant code lists.
func NewRoleInfo(role RoleTag, active bool, permissions, privileges []string) RoleInfo {
	info := RoleInfo{
		Role:        role,
		RoleActive:  active,
		permissions: make(map[string]struct{}, len(permissions)),
		privileges:  make(map[string]struct{}, len(privileges)),
	}
	for _, code := range permissions {
		info.permissions[code] = struct{}{}
	}
	for _, code := range privileges {
		info.privileges[code] = struct{}{}
	}
	return info
}

// unknownRoleInfo is the deny-by-absence snapshot for missing users or roles.
func unknownRoleInfo() RoleInfo {
	return NewRoleInfo(RoleUnknown, false, nil, nil)
}

// HasPermission reports whether the snapshot contains the permission code.
func (i RoleInfo) HasPermission(code string) bool {
	_, ok := i.permissions[code]
	return ok
}

// HasPrivilege reports whether the snapshot contains the privilege code.
func (i RoleInfo) HasPrivilege(code string) bool {
	_, ok := i.privileges[code]
	return ok
}

// Permissions returns the permission codes as a slice.
func (i RoleInfo) Permissions() []string {
	return setToSlice(i.permissions)
}

// Privileges returns the privilege codes as a slice.
func (i RoleInfo) Privileges() []string {
	return setToSlice(i.privileges)
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	return out
}
