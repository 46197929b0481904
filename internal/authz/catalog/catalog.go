// Package catalog is the static vocabulary of the authorization engine: one
// permission code per business module, one privilege code per action within a
// module, and the default grant sets for the four role archetypes. It has no
// runtime behavior beyond lookup; the seed tool materialises it into the grant
// store and the drift check compares the store against it.
package catalog

// Role archetype codes as stored in the roles table.
const (
	RoleCodeAdmin       = "R001"
	RoleCodeTrainer     = "R002"
	RoleCodeClient      = "R003"
	RoleCodeBeneficiary = "R004"
)

// Module-level permission codes.
const (
	PermAsistencias  = "ASISTENCIAS"
	PermClientes     = "CLIENTES"
	PermContratos    = "CONTRATOS"
	PermMembresias   = "MEMBRESIAS"
	PermHorarios     = "HORARIOS"
	PermEntrenadores = "ENTRENADORES"
	PermUsuarios     = "USUARIOS"
	PermRoles        = "ROLES"
	PermDashboard    = "DASHBOARD"
)

// Attendance privileges.
const (
	PrivAsistRead   = "ASIST_READ"
	PrivAsistSearch = "ASIST_SEARCH"
	PrivAsistCreate = "ASIST_CREATE"
	PrivAsistUpdate = "ASIST_UPDATE"
	PrivAsistDelete = "ASIST_DELETE"
	PrivAsistDetail = "ASIST_DETAIL"
	PrivAsistMyRead = "ASIST_MY_READ"
)

// Client privileges.
const (
	PrivClientRead   = "CLIENT_READ"
	PrivClientSearch = "CLIENT_SEARCH"
	PrivClientCreate = "CLIENT_CREATE"
	PrivClientUpdate = "CLIENT_UPDATE"
	PrivClientDelete = "CLIENT_DELETE"
	PrivClientDetail = "CLIENT_DETAIL"
)

// Contract privileges.
const (
	PrivContractRead   = "CONTRACT_READ"
	PrivContractSearch = "CONTRACT_SEARCH"
	PrivContractCreate = "CONTRACT_CREATE"
	PrivContractUpdate = "CONTRACT_UPDATE"
	PrivContractCancel = "CONTRACT_CANCEL"
	PrivContractDetail = "CONTRACT_DETAIL"
	PrivContractMyRead = "CONTRACT_MY_READ"
)

// Membership privileges.
const (
	PrivMembershipRead   = "MEMBERSHIP_READ"
	PrivMembershipSearch = "MEMBERSHIP_SEARCH"
	PrivMembershipCreate = "MEMBERSHIP_CREATE"
	PrivMembershipUpdate = "MEMBERSHIP_UPDATE"
	PrivMembershipDelete = "MEMBERSHIP_DELETE"
	PrivMembershipMyRead = "MEMBERSHIP_MY_READ"
)

// Schedule privileges.
const (
	PrivScheduleRead   = "SCHEDULE_READ"
	PrivScheduleSearch = "SCHEDULE_SEARCH"
	PrivScheduleCreate = "SCHEDULE_CREATE"
	PrivScheduleUpdate = "SCHEDULE_UPDATE"
	PrivScheduleDelete = "SCHEDULE_DELETE"
	PrivScheduleMyRead = "SCHEDULE_MY_READ"
)

// Trainer privileges.
const (
	PrivTrainerRead   = "TRAINER_READ"
	PrivTrainerSearch = "TRAINER_SEARCH"
	PrivTrainerCreate = "TRAINER_CREATE"
	PrivTrainerUpdate = "TRAINER_UPDATE"
	PrivTrainerDelete = "TRAINER_DELETE"
)

// User and role administration privileges.
const (
	PrivUserRead   = "USER_READ"
	PrivUserCreate = "USER_CREATE"
	PrivUserUpdate = "USER_UPDATE"
	PrivUserDelete = "USER_DELETE"

	PrivRoleRead   = "ROLE_READ"
	PrivRoleUpdate = "ROLE_UPDATE"
)

// Dashboard privileges.
const (
	PrivDashboardView = "DASHBOARD_VIEW"
)

// Permission describes a module-level permission entry.
type Permission struct {
	Code        string
	Description string
}

// Privilege describes an action-level privilege entry scoped to a module.
type Privilege struct {
	Code   string
	Module string
}

// Permissions lists every permission in the catalog.
func Permissions() []Permission {
	return []Permission{
		{PermAsistencias, "Attendance tracking"},
		{PermClientes, "Client management"},
		{PermContratos, "Contract management"},
		{PermMembresias, "Membership management"},
		{PermHorarios, "Class and trainer schedules"},
		{PermEntrenadores, "Trainer management"},
		{PermUsuarios, "User administration"},
		{PermRoles, "Role administration"},
		{PermDashboard, "Management dashboard"},
	}
}

// Privileges lists every privilege in the catalog with its owning module.
func Privileges() []Privilege {
	return []Privilege{
		{PrivAsistRead, PermAsistencias},
		{PrivAsistSearch, PermAsistencias},
		{PrivAsistCreate, PermAsistencias},
		{PrivAsistUpdate, PermAsistencias},
		{PrivAsistDelete, PermAsistencias},
		{PrivAsistDetail, PermAsistencias},
		{PrivAsistMyRead, PermAsistencias},

		{PrivClientRead, PermClientes},
		{PrivClientSearch, PermClientes},
		{PrivClientCreate, PermClientes},
		{PrivClientUpdate, PermClientes},
		{PrivClientDelete, PermClientes},
		{PrivClientDetail, PermClientes},

		{PrivContractRead, PermContratos},
		{PrivContractSearch, PermContratos},
		{PrivContractCreate, PermContratos},
		{PrivContractUpdate, PermContratos},
		{PrivContractCancel, PermContratos},
		{PrivContractDetail, PermContratos},
		{PrivContractMyRead, PermContratos},

		{PrivMembershipRead, PermMembresias},
		{PrivMembershipSearch, PermMembresias},
		{PrivMembershipCreate, PermMembresias},
		{PrivMembershipUpdate, PermMembresias},
		{PrivMembershipDelete, PermMembresias},
		{PrivMembershipMyRead, PermMembresias},

		{PrivScheduleRead, PermHorarios},
		{PrivScheduleSearch, PermHorarios},
		{PrivScheduleCreate, PermHorarios},
		{PrivScheduleUpdate, PermHorarios},
		{PrivScheduleDelete, PermHorarios},
		{PrivScheduleMyRead, PermHorarios},

		{PrivTrainerRead, PermEntrenadores},
		{PrivTrainerSearch, PermEntrenadores},
		{PrivTrainerCreate, PermEntrenadores},
		{PrivTrainerUpdate, PermEntrenadores},
		{PrivTrainerDelete, PermEntrenadores},

		{PrivUserRead, PermUsuarios},
		{PrivUserCreate, PermUsuarios},
		{PrivUserUpdate, PermUsuarios},
		{PrivUserDelete, PermUsuarios},

		{PrivRoleRead, PermRoles},
		{PrivRoleUpdate, PermRoles},

		{PrivDashboardView, PermDashboard},
	}
}

// PermissionCodes returns every permission code.
func PermissionCodes() []string {
	perms := Permissions()
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes
}

// PrivilegeCodes returns every privilege code.
func PrivilegeCodes() []string {
	privs := Privileges()
	codes := make([]string, len(privs))
	for i, p := range privs {
		codes[i] = p.Code
	}
	return codes
}

// RoleCodes returns the four archetype role codes.
func RoleCodes() []string {
	return []string{RoleCodeAdmin, RoleCodeTrainer, RoleCodeClient, RoleCodeBeneficiary}
}
