package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gymstack/gymstack/internal/app"
	"github.com/gymstack/gymstack/internal/authz"
	"github.com/gymstack/gymstack/internal/authz/catalog"
	"github.com/gymstack/gymstack/internal/observability"
	_ "github.com/gymstack/gymstack/testing"
)

// stubStore backs the full HTTP stack with in-memory grants.
type stubStore struct {
	mu        sync.Mutex
	users     map[int64]string
	rolePerms map[string][]string
	rolePrivs map[string][]string
}

func newStubStore() *stubStore {
	return &stubStore{
		users:     make(map[int64]string),
		rolePerms: make(map[string][]string),
		rolePrivs: make(map[string][]string),
	}
}

func (s *stubStore) FindUserWithRole(_ context.Context, userID int64) (authz.UserRole, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.users[userID]
	if !ok {
		return authz.UserRole{}, false, nil
	}
	return authz.UserRole{RoleCode: code, Active: true}, true, nil
}

func (s *stubStore) FindActivePermissions(_ context.Context, roleCode string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rolePerms[roleCode]...), nil
}

func (s *stubStore) FindPrivileges(_ context.Context, roleCode string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rolePrivs[roleCode]...), nil
}

func (s *stubStore) AssignPermissionsToRole(_ context.Context, roleCode string, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePerms[roleCode] = append([]string(nil), codes...)
	return nil
}

func (s *stubStore) AssignPrivilegesToRole(_ context.Context, roleCode string, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePrivs[roleCode] = append([]string(nil), codes...)
	return nil
}

func (s *stubStore) ListPermissionCodes(_ context.Context) ([]string, error) {
	return catalog.PermissionCodes(), nil
}

func (s *stubStore) ListPrivilegeCodes(_ context.Context) ([]string, error) {
	return catalog.PrivilegeCodes(), nil
}

func startServer(t *testing.T, store authz.GrantStore) *httptest.Server {
	t.Helper()

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()

	service := authz.NewService(authz.NewResolver(store), authz.NewCache(time.Minute), logger,
		authz.WithMetrics(metrics))
	mw := authz.Middleware{Service: service, Logger: logger}
	handler := authz.NewHandler(logger, service, store, mw)

	server := httptest.NewServer(app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthzHandler: handler,
		Metrics:      metrics,
	}))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url string, userID string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestAuthzFlowThroughFullStack(t *testing.T) {
	store := newStubStore()
	store.users[1] = catalog.RoleCodeAdmin
	store.users[10] = catalog.RoleCodeTrainer
	require.NoError(t, store.AssignPermissionsToRole(context.Background(),
		catalog.RoleCodeAdmin, catalog.DefaultPermissions(catalog.RoleCodeAdmin)))
	require.NoError(t, store.AssignPrivilegesToRole(context.Background(),
		catalog.RoleCodeAdmin, catalog.DefaultPrivileges(catalog.RoleCodeAdmin)))
	require.NoError(t, store.AssignPermissionsToRole(context.Background(),
		catalog.RoleCodeTrainer, []string{catalog.PermAsistencias}))
	require.NoError(t, store.AssignPrivilegesToRole(context.Background(),
		catalog.RoleCodeTrainer, []string{catalog.PrivAsistRead}))

	server := startServer(t, store)

	// No principal header: the engine's own surface requires one.
	res := do(t, http.MethodGet, server.URL+"/authz/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// The trainer inspects their own snapshot.
	res = do(t, http.MethodGet, server.URL+"/authz/me", "10", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me struct {
		Role       string   `json:"role"`
		RoleActive bool     `json:"role_active"`
		Privileges []string `json:"privileges"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
	require.Equal(t, "trainer", me.Role)
	require.True(t, me.RoleActive)
	require.Equal(t, []string{catalog.PrivAsistRead}, me.Privileges)

	// Role administration is gated: the trainer is refused, the admin is not.
	grants := map[string][]string{"codes": {catalog.PrivAsistRead, catalog.PrivAsistCreate}}
	res = do(t, http.MethodPut, server.URL+"/authz/roles/R002/privileges", "10", grants)
	require.Equal(t, http.StatusForbidden, res.StatusCode)

	res = do(t, http.MethodPut, server.URL+"/authz/roles/R002/privileges", "1", grants)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	// The reassignment flushed the cache, so the trainer sees the new set
	// immediately rather than after the TTL.
	res = do(t, http.MethodGet, server.URL+"/authz/me", "10", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
	require.ElementsMatch(t, []string{catalog.PrivAsistRead, catalog.PrivAsistCreate}, me.Privileges)

	// Unknown role codes 404 before any store write.
	res = do(t, http.MethodPut, server.URL+"/authz/roles/R999/privileges", "1", grants)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	// Explicit invalidation endpoint, admin only.
	res = do(t, http.MethodPost, server.URL+"/authz/cache/invalidate", "1", map[string]any{"user_id": 10})
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}
