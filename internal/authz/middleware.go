package authz

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gymstack/gymstack/internal/platform/httpx"
	"github.com/gymstack/gymstack/internal/shared"
)

// Middleware wires the gate pattern every protected route follows: resolve
// the principal, short-circuit on admin (and any configured bypass roles),
// otherwise require one specific permission/privilege pair. Missing principal
// answers 401, denial 403 with a resource-specific detail, infrastructure
// fault 500 — an outage is never presented as an ordinary denial.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger

	// LenientFallback enables the availability-over-strictness exception:
	// gates built with WithRoleFallback may allow an allow-listed role whose
	// expected privilege is absent, with a warning. Off by default; strict
	// deployments leave it off.
	LenientFallback bool
}

type gateConfig struct {
	resource      string
	bypassRoles   []RoleTag
	fallbackRoles []RoleTag
}

// GateOption customises a single gate.
type GateOption func(*gateConfig)

// WithResource names the guarded resource in denial responses.
func WithResource(name string) GateOption {
	return func(g *gateConfig) { g.resource = name }
}

// WithBypassRoles lets the listed role archetypes through without a privilege
// check, the way admin always is. Used for the read-mostly trainer surfaces.
func WithBypassRoles(tags ...RoleTag) GateOption {
	return func(g *gateConfig) { g.bypassRoles = append(g.bypassRoles, tags...) }
}

// WithRoleFallback allow-lists role archetypes for the lenient
// privilege-desynchronization fallback. It is inert unless the middleware's
// LenientFallback flag is on, and it logs a warning on every use: it exists
// so schedule reads keep working for clients while a grant drift is being
// reconciled, not as a general escape hatch.
func WithRoleFallback(tags ...RoleTag) GateOption {
	return func(g *gateConfig) { g.fallbackRoles = append(g.fallbackRoles, tags...) }
}

// RequirePrivilege gates a route on the module permission plus, when privilege
// is non-empty, the action privilege. One snapshot fetch covers the bypass
// checks and the decision.
func (m Middleware) RequirePrivilege(permission, privilege string, opts ...GateOption) func(http.Handler) http.Handler {
	cfg := gateConfig{resource: permission}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.UserIDFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}

			info, err := m.Service.GetUserRoleInfo(r.Context(), userID)
			if err != nil {
				m.Logger.Error("authorization gate failed closed",
					slog.Int64("user_id", userID),
					slog.String("resource", cfg.resource),
					slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}

			if info.Role == RoleAdmin && info.RoleActive {
				next.ServeHTTP(w, r)
				return
			}
			for _, tag := range cfg.bypassRoles {
				if info.Role == tag {
					next.ServeHTTP(w, r)
					return
				}
			}

			decision := m.Service.decide(info, permission, privilege)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if m.LenientFallback {
				for _, tag := range cfg.fallbackRoles {
					if info.Role == tag {
						m.Logger.Warn("lenient fallback allowed despite missing grant",
							slog.Int64("user_id", userID),
							slog.String("role", info.Role.String()),
							slog.String("resource", cfg.resource),
							slog.String("reason", decision.Reason))
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			httpx.RespondError(w, fmt.Errorf("%w: %s: %s",
				httpx.ErrForbidden, cfg.resource, decision.Reason))
		})
	}
}

// RequireAdmin gates a route on the admin archetype alone.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.UserIDFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			info, err := m.Service.GetUserRoleInfo(r.Context(), userID)
			if err != nil {
				m.Logger.Error("authorization gate failed closed",
					slog.Int64("user_id", userID),
					slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			if info.Role == RoleAdmin && info.RoleActive {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, fmt.Errorf("%w: admin role required", httpx.ErrForbidden))
		})
	}
}
