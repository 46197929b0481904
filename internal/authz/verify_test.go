package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gymstack/gymstack/internal/authz/catalog"
)

func TestVerifyCatalogCleanStore(t *testing.T) {
	store := newMemoryGrantStore()
	for _, code := range catalog.PermissionCodes() {
		store.addPermission(code, true)
	}
	require.NoError(t, store.AssignPrivilegesToRole(context.Background(),
		catalog.RoleCodeAdmin, catalog.PrivilegeCodes()))

	missing, err := VerifyCatalog(context.Background(), store, discardLogger())
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestVerifyCatalogReportsDrift(t *testing.T) {
	store := newMemoryGrantStore()
	for _, code := range catalog.PermissionCodes() {
		if code == catalog.PermDashboard {
			continue
		}
		store.addPermission(code, true)
	}
	var privs []string
	for _, code := range catalog.PrivilegeCodes() {
		if code == catalog.PrivAsistDelete || code == catalog.PrivRoleUpdate {
			continue
		}
		privs = append(privs, code)
	}
	require.NoError(t, store.AssignPrivilegesToRole(context.Background(),
		catalog.RoleCodeAdmin, privs))

	missing, err := VerifyCatalog(context.Background(), store, discardLogger())
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]string{catalog.PermDashboard, catalog.PrivAsistDelete, catalog.PrivRoleUpdate},
		missing)
}

func TestVerifyCatalogSurfacesStoreFault(t *testing.T) {
	store := newMemoryGrantStore()
	store.fail(dataAccessErr("list permission codes", context.DeadlineExceeded))

	_, err := VerifyCatalog(context.Background(), store, discardLogger())
	require.Error(t, err)
	require.True(t, IsDataAccess(err))
}
