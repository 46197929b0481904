package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gymstack/gymstack/internal/authz/catalog"
	"github.com/gymstack/gymstack/internal/shared"
)

func gateRequest(t *testing.T, gate func(http.Handler) http.Handler, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("handled"))
	}))
	req := httptest.NewRequest(http.MethodDelete, "/attendances/1", nil)
	if userID > 0 {
		req = req.WithContext(shared.ContextWithUserID(req.Context(), userID))
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestGateRejectsMissingPrincipalWith401(t *testing.T) {
	store := newMemoryGrantStore()
	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	gate := mw.RequirePrivilege(catalog.PermAsistencias, catalog.PrivAsistDelete,
		WithResource("attendance"))
	res := gateRequest(t, gate, 0)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestGateDeniesTrainerMissingDeletePrivilege(t *testing.T) {
	store := newMemoryGrantStore()
	store.setUser(10, catalog.RoleCodeTrainer)
	store.setRole(catalog.RoleCodeTrainer, true)
	store.addPermission(catalog.PermAsistencias, true)
	ctx := context.Background()
	if err := store.AssignPermissionsToRole(ctx, catalog.RoleCodeTrainer, []string{catalog.PermAsistencias}); err != nil {
		t.Fatalf("assign permissions: %v", err)
	}
	if err := store.AssignPrivilegesToRole(ctx, catalog.RoleCodeTrainer,
		[]string{catalog.PrivAsistRead, catalog.PrivAsistCreate}); err != nil {
		t.Fatalf("assign privileges: %v", err)
	}

	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	if !service.IsTrainer(ctx, 10) {
		t.Fatal("expected trainer role")
	}
	if service.HasPrivilege(ctx, 10, catalog.PrivAsistDelete) {
		t.Fatal("trainer must not hold ASIST_DELETE")
	}

	// Delete gate bypasses only for admin; the trainer is denied with 403.
	gate := mw.RequirePrivilege(catalog.PermAsistencias, catalog.PrivAsistDelete,
		WithResource("attendance"))
	res := gateRequest(t, gate, 10)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "missing privilege ASIST_DELETE") {
		t.Fatalf("expected denial reason in body, got %s", res.Body.String())
	}
}

func TestGateAdminBypassRequiresActiveRole(t *testing.T) {
	store := newMemoryGrantStore()
	store.setUser(1, catalog.RoleCodeAdmin)
	store.setRole(catalog.RoleCodeAdmin, true)
	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	gate := mw.RequirePrivilege(catalog.PermAsistencias, catalog.PrivAsistDelete,
		WithResource("attendance"))
	if res := gateRequest(t, gate, 1); res.Code != http.StatusOK {
		t.Fatalf("expected admin bypass, got %d", res.Code)
	}

	store.setRole(catalog.RoleCodeAdmin, false)
	service.ClearPermissionsCache(context.Background(), 1)
	if res := gateRequest(t, gate, 1); res.Code != http.StatusForbidden {
		t.Fatalf("expected disabled admin to be denied, got %d", res.Code)
	}
}

func TestGateBypassRoles(t *testing.T) {
	store := newMemoryGrantStore()
	store.setUser(10, catalog.RoleCodeTrainer)
	store.setRole(catalog.RoleCodeTrainer, true)
	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	gate := mw.RequirePrivilege(catalog.PermAsistencias, catalog.PrivAsistRead,
		WithResource("attendance"), WithBypassRoles(RoleTrainer))
	if res := gateRequest(t, gate, 10); res.Code != http.StatusOK {
		t.Fatalf("expected trainer bypass, got %d", res.Code)
	}
}

func TestGateAnswers500OnStoreFault(t *testing.T) {
	store := newMemoryGrantStore()
	store.fail(dataAccessErr("find user with role", errors.New("connection refused")))
	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	gate := mw.RequirePrivilege(catalog.PermAsistencias, catalog.PrivAsistRead,
		WithResource("attendance"))
	res := gateRequest(t, gate, 10)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("infra fault must surface 500, got %d", res.Code)
	}
}

func TestGateLenientFallbackIsOptInAndScoped(t *testing.T) {
	store := newMemoryGrantStore()
	store.setUser(20, catalog.RoleCodeClient)
	store.setRole(catalog.RoleCodeClient, true)
	store.addPermission(catalog.PermHorarios, true)
	ctx := context.Background()
	if err := store.AssignPermissionsToRole(ctx, catalog.RoleCodeClient, []string{catalog.PermHorarios}); err != nil {
		t.Fatalf("assign permissions: %v", err)
	}
	// SCHEDULE_READ deliberately absent: the desynchronization the fallback covers.

	service, _ := newTestService(t, store, time.Minute)

	strict := Middleware{Service: service, Logger: discardLogger()}
	gate := strict.RequirePrivilege(catalog.PermHorarios, catalog.PrivScheduleRead,
		WithResource("schedules"), WithRoleFallback(RoleClient, RoleBeneficiary))
	if res := gateRequest(t, gate, 20); res.Code != http.StatusForbidden {
		t.Fatalf("strict mode must deny, got %d", res.Code)
	}

	lenient := Middleware{Service: service, Logger: discardLogger(), LenientFallback: true}
	gate = lenient.RequirePrivilege(catalog.PermHorarios, catalog.PrivScheduleRead,
		WithResource("schedules"), WithRoleFallback(RoleClient, RoleBeneficiary))
	if res := gateRequest(t, gate, 20); res.Code != http.StatusOK {
		t.Fatalf("lenient fallback should allow the listed role, got %d", res.Code)
	}

	// A role outside the allow-list is still denied even in lenient mode.
	gate = lenient.RequirePrivilege(catalog.PermHorarios, catalog.PrivScheduleRead,
		WithResource("schedules"), WithRoleFallback(RoleBeneficiary))
	if res := gateRequest(t, gate, 20); res.Code != http.StatusForbidden {
		t.Fatalf("fallback must stay scoped to listed roles, got %d", res.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	store := newMemoryGrantStore()
	store.setUser(1, catalog.RoleCodeAdmin)
	store.setRole(catalog.RoleCodeAdmin, true)
	store.setUser(2, catalog.RoleCodeTrainer)
	store.setRole(catalog.RoleCodeTrainer, true)
	service, _ := newTestService(t, store, time.Minute)
	mw := Middleware{Service: service, Logger: discardLogger()}

	gate := mw.RequireAdmin()
	if res := gateRequest(t, gate, 1); res.Code != http.StatusOK {
		t.Fatalf("expected admin allowed, got %d", res.Code)
	}
	if res := gateRequest(t, gate, 2); res.Code != http.StatusForbidden {
		t.Fatalf("expected trainer denied, got %d", res.Code)
	}
	if res := gateRequest(t, gate, 0); res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", res.Code)
	}
}
