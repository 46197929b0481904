package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL-backed grant store. Every fault it returns is
// wrapped as *DataAccessError; callers never see raw pgx errors.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ GrantStore = (*Repository)(nil)

// FindUserWithRole returns the role linkage for a user.
func (r *Repository) FindUserWithRole(ctx context.Context, userID int64) (UserRole, bool, error) {
	const query = `
		SELECT r.codigo, r.estado
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`
	var userRole UserRole
	err := r.pool.QueryRow(ctx, query, userID).Scan(&userRole.RoleCode, &userRole.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRole{}, false, nil
		}
		return UserRole{}, false, wrapStoreErr("find user with role", err)
	}
	return userRole, true, nil
}

// FindActivePermissions returns permission codes linked to the role with
// estado=true. Disabled permissions never reach the effective set.
func (r *Repository) FindActivePermissions(ctx context.Context, roleCode string) ([]string, error) {
	const query = `
		SELECT p.codigo
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.codigo = $1 AND p.estado = TRUE
		ORDER BY p.codigo`
	return r.queryCodes(ctx, "find active permissions", query, roleCode)
}

// FindPrivileges returns privilege codes linked to the role.
func (r *Repository) FindPrivileges(ctx context.Context, roleCode string) ([]string, error) {
	const query = `
		SELECT p.codigo
		FROM privileges p
		JOIN role_privileges rp ON rp.privilege_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.codigo = $1
		ORDER BY p.codigo`
	return r.queryCodes(ctx, "find privileges", query, roleCode)
}

// AssignPermissionsToRole replaces the role's permission set in one
// transaction: existing links are deleted, the new set inserted. An empty set
// clears the role.
func (r *Repository) AssignPermissionsToRole(ctx context.Context, roleCode string, codes []string) error {
	return r.replaceGrants(ctx, "assign permissions to role", roleCode, codes,
		`DELETE FROM role_permissions WHERE role_id = $1`,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT $1, id FROM permissions WHERE codigo = ANY($2)`)
}

// AssignPrivilegesToRole replaces the role's privilege set in one transaction.
func (r *Repository) AssignPrivilegesToRole(ctx context.Context, roleCode string, codes []string) error {
	return r.replaceGrants(ctx, "assign privileges to role", roleCode, codes,
		`DELETE FROM role_privileges WHERE role_id = $1`,
		`INSERT INTO role_privileges (role_id, privilege_id)
		 SELECT $1, id FROM privileges WHERE codigo = ANY($2)`)
}

// ListPermissionCodes returns every permission code in the store.
func (r *Repository) ListPermissionCodes(ctx context.Context) ([]string, error) {
	return r.queryCodes(ctx, "list permission codes", `SELECT codigo FROM permissions ORDER BY codigo`)
}

// ListPrivilegeCodes returns every privilege code in the store.
func (r *Repository) ListPrivilegeCodes(ctx context.Context) ([]string, error) {
	return r.queryCodes(ctx, "list privilege codes", `SELECT codigo FROM privileges ORDER BY codigo`)
}

// EnsureRole upserts a role row by codigo. Seed-time only.
func (r *Repository) EnsureRole(ctx context.Context, codigo string, estado bool) error {
	const query = `
		INSERT INTO roles (codigo, estado) VALUES ($1, $2)
		ON CONFLICT (codigo) DO UPDATE SET estado = EXCLUDED.estado`
	if _, err := r.pool.Exec(ctx, query, codigo, estado); err != nil {
		return wrapStoreErr("ensure role", err)
	}
	return nil
}

// EnsurePermission upserts a permission row by codigo. Seed-time only.
func (r *Repository) EnsurePermission(ctx context.Context, codigo, description string) error {
	const query = `
		INSERT INTO permissions (codigo, descripcion, estado) VALUES ($1, $2, TRUE)
		ON CONFLICT (codigo) DO UPDATE SET descripcion = EXCLUDED.descripcion`
	if _, err := r.pool.Exec(ctx, query, codigo, description); err != nil {
		return wrapStoreErr("ensure permission", err)
	}
	return nil
}

// EnsurePrivilege upserts a privilege row by codigo. Seed-time only.
func (r *Repository) EnsurePrivilege(ctx context.Context, codigo string) error {
	const query = `
		INSERT INTO privileges (codigo) VALUES ($1)
		ON CONFLICT (codigo) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query, codigo); err != nil {
		return wrapStoreErr("ensure privilege", err)
	}
	return nil
}

func (r *Repository) queryCodes(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr(op, err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, wrapStoreErr(op, err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(op, err)
	}
	return codes, nil
}

func (r *Repository) replaceGrants(ctx context.Context, op, roleCode string, codes []string, deleteSQL, insertSQL string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapStoreErr(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roleID int64
	err = tx.QueryRow(ctx, `SELECT id FROM roles WHERE codigo = $1`, roleCode).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wrapStoreErr(op, fmt.Errorf("role %s not found", roleCode))
		}
		return wrapStoreErr(op, err)
	}

	if _, err := tx.Exec(ctx, deleteSQL, roleID); err != nil {
		return wrapStoreErr(op, err)
	}
	if len(codes) > 0 {
		if _, err := tx.Exec(ctx, insertSQL, roleID, codes); err != nil {
			return wrapStoreErr(op, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreErr(op, err)
	}
	return nil
}

// wrapStoreErr turns a driver fault into a DataAccessError, tagging schema
// mismatches with their SQLSTATE so operators can tell drifted DDL apart from
// an unreachable store.
func wrapStoreErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return dataAccessErr(fmt.Sprintf("%s (sqlstate %s)", op, pgErr.Code), err)
	}
	return dataAccessErr(op, err)
}
