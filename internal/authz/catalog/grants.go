package catalog

// Default grant sets per role archetype. Admin receives the full catalog; the
// other archetypes are least-privilege subsets. These are applied with replace
// semantics by the seed tool, so editing a set here and re-seeding discards
// whatever the role held before.

var trainerPermissions = []string{
	PermAsistencias,
	PermClientes,
	PermContratos,
	PermMembresias,
	PermHorarios,
	PermDashboard,
}

// Trainers run the floor: they record attendance, register walk-ins and manage
// schedules, and read contracts and memberships. They never delete or cancel.
var trainerPrivileges = []string{
	PrivAsistRead,
	PrivAsistSearch,
	PrivAsistCreate,
	PrivAsistDetail,
	PrivClientRead,
	PrivClientSearch,
	PrivClientCreate,
	PrivClientDetail,
	PrivContractRead,
	PrivContractSearch,
	PrivContractDetail,
	PrivMembershipRead,
	PrivMembershipSearch,
	PrivScheduleRead,
	PrivScheduleSearch,
	PrivScheduleCreate,
	PrivScheduleUpdate,
	PrivDashboardView,
}

var clientPermissions = []string{
	PermAsistencias,
	PermContratos,
	PermMembresias,
	PermHorarios,
}

var clientPrivileges = []string{
	PrivAsistMyRead,
	PrivContractRead,
	PrivContractMyRead,
	PrivMembershipRead,
	PrivMembershipMyRead,
	PrivScheduleRead,
	PrivScheduleMyRead,
}

var beneficiaryPermissions = []string{
	PermAsistencias,
	PermContratos,
	PermMembresias,
	PermHorarios,
}

var beneficiaryPrivileges = []string{
	PrivAsistMyRead,
	PrivContractMyRead,
	PrivMembershipMyRead,
	PrivScheduleRead,
	PrivScheduleMyRead,
}

// DefaultPermissions returns the default permission grant set for a role code.
// Unknown role codes get an empty set.
func DefaultPermissions(roleCode string) []string {
	switch roleCode {
	case RoleCodeAdmin:
		return PermissionCodes()
	case RoleCodeTrainer:
		return append([]string(nil), trainerPermissions...)
	case RoleCodeClient:
		return append([]string(nil), clientPermissions...)
	case RoleCodeBeneficiary:
		return append([]string(nil), beneficiaryPermissions...)
	}
	return nil
}

// DefaultPrivileges returns the default privilege grant set for a role code.
// Unknown role codes get an empty set.
func DefaultPrivileges(roleCode string) []string {
	switch roleCode {
	case RoleCodeAdmin:
		return PrivilegeCodes()
	case RoleCodeTrainer:
		return append([]string(nil), trainerPrivileges...)
	case RoleCodeClient:
		return append([]string(nil), clientPrivileges...)
	case RoleCodeBeneficiary:
		return append([]string(nil), beneficiaryPrivileges...)
	}
	return nil
}
