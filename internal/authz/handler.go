package authz

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/gymstack/gymstack/internal/authz/catalog"
	"github.com/gymstack/gymstack/internal/platform/httpx"
	"github.com/gymstack/gymstack/internal/shared"
)

// Handler exposes the engine's own HTTP surface: a self-inspection endpoint
// and the role administration operations (grant reassignment, cache
// invalidation). The gym resource controllers live in the surrounding system;
// they consume the middleware, not this handler.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	store    GrantStore
	mw       Middleware
	validate *validator.Validate
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, store GrantStore, mw Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		store:    store,
		mw:       mw,
		validate: validator.New(),
	}
}

// MountRoutes registers the authz routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.getMyRoleInfo)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePrivilege(catalog.PermRoles, catalog.PrivRoleUpdate,
			WithResource("role administration")))
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/cache/invalidate", h.invalidateCache)
		r.Put("/roles/{codigo}/permissions", h.putRolePermissions)
		r.Put("/roles/{codigo}/privileges", h.putRolePrivileges)
	})
}

type roleInfoResponse struct {
	Role        string   `json:"role"`
	RoleActive  bool     `json:"role_active"`
	Permissions []string `json:"permissions"`
	Privileges  []string `json:"privileges"`
}

func (h *Handler) getMyRoleInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	info, err := h.service.GetUserRoleInfo(r.Context(), userID)
	if err != nil {
		h.logger.Error("get role info", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	permissions := info.Permissions()
	privileges := info.Privileges()
	sort.Strings(permissions)
	sort.Strings(privileges)
	httpx.JSON(w, http.StatusOK, roleInfoResponse{
		Role:        info.Role.String(),
		RoleActive:  info.RoleActive,
		Permissions: permissions,
		Privileges:  privileges,
	})
}

type invalidateRequest struct {
	UserID *int64 `json:"user_id" validate:"omitempty,gt=0"`
}

func (h *Handler) invalidateCache(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if req.UserID != nil {
		h.service.ClearPermissionsCache(r.Context(), *req.UserID)
	} else {
		h.service.ClearPermissionsCache(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignGrantsRequest struct {
	Codes []string `json:"codes" validate:"dive,required"`
}

func (h *Handler) putRolePermissions(w http.ResponseWriter, r *http.Request) {
	h.assignGrants(w, r, catalog.PermissionCodes(), h.store.AssignPermissionsToRole)
}

func (h *Handler) putRolePrivileges(w http.ResponseWriter, r *http.Request) {
	h.assignGrants(w, r, catalog.PrivilegeCodes(), h.store.AssignPrivilegesToRole)
}

// assignGrants replaces a role's grant set wholesale and flushes every cached
// snapshot: any user of the role may be affected and the engine does not track
// the reverse mapping. Codes are checked against the catalog first: with
// replace semantics a typo would otherwise clear the role and insert nothing.
func (h *Handler) assignGrants(w http.ResponseWriter, r *http.Request, known []string, assign func(ctx context.Context, roleCode string, codes []string) error) {
	codigo := chi.URLParam(r, "codigo")
	if ParseRoleCode(codigo) == RoleUnknown {
		httpx.RespondError(w, fmt.Errorf("%w: unknown role %s", httpx.ErrNotFound, codigo))
		return
	}

	var req assignGrantsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if code := firstUnknownCode(req.Codes, known); code != "" {
		httpx.RespondError(w, fmt.Errorf("%w: unknown code %s", httpx.ErrValidation, code))
		return
	}

	if err := assign(r.Context(), codigo, req.Codes); err != nil {
		h.logger.Error("assign grants",
			slog.String("role", codigo),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.service.ClearPermissionsCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func firstUnknownCode(codes, known []string) string {
	set := make(map[string]struct{}, len(known))
	for _, code := range known {
		set[code] = struct{}{}
	}
	for _, code := range codes {
		if _, ok := set[code]; !ok {
			return code
		}
	}
	return ""
}
