package perf

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gymstack/gymstack/internal/authz"
	"github.com/gymstack/gymstack/internal/authz/catalog"
	_ "github.com/gymstack/gymstack/testing"
)

// benchStore returns a fixed grant set without touching a database, so the
// benchmarks measure the engine, not I/O.
type benchStore struct{}

func (benchStore) FindUserWithRole(context.Context, int64) (authz.UserRole, bool, error) {
	return authz.UserRole{RoleCode: catalog.RoleCodeTrainer, Active: true}, true, nil
}
func (benchStore) FindActivePermissions(context.Context, string) ([]string, error) {
	return catalog.DefaultPermissions(catalog.RoleCodeTrainer), nil
}
func (benchStore) FindPrivileges(context.Context, string) ([]string, error) {
	return catalog.DefaultPrivileges(catalog.RoleCodeTrainer), nil
}
func (benchStore) AssignPermissionsToRole(context.Context, string, []string) error { return nil }
func (benchStore) AssignPrivilegesToRole(context.Context, string, []string) error  { return nil }
func (benchStore) ListPermissionCodes(context.Context) ([]string, error) {
	return catalog.PermissionCodes(), nil
}
func (benchStore) ListPrivilegeCodes(context.Context) ([]string, error) {
	return catalog.PrivilegeCodes(), nil
}

func newBenchService() *authz.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return authz.NewService(authz.NewResolver(benchStore{}), authz.NewCache(time.Hour), logger)
}

// The cached decision path sits on every protected request, so it has to stay
// allocation-light and lock-light.
func BenchmarkCachedDecision(b *testing.B) {
	service := newBenchService()
	ctx := context.Background()
	service.HasPrivilege(ctx, 1, catalog.PrivAsistRead) // warm the cache

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !service.CanPerformAction(ctx, 1, catalog.PermAsistencias, catalog.PrivAsistRead) {
			b.Fatal("expected allow")
		}
	}
}

func BenchmarkCachedDecisionParallel(b *testing.B) {
	service := newBenchService()
	ctx := context.Background()
	service.HasPrivilege(ctx, 1, catalog.PrivAsistRead)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if !service.CanPerformAction(ctx, 1, catalog.PermAsistencias, catalog.PrivAsistRead) {
				b.Fatal("expected allow")
			}
		}
	})
}

func BenchmarkColdResolution(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := authz.NewResolver(benchStore{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service := authz.NewService(resolver, authz.NewCache(time.Hour), logger)
		if !service.HasPermission(ctx, 1, catalog.PermAsistencias) {
			b.Fatal("expected allow")
		}
	}
}
