package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/gymstack/gymstack/internal/observability"
)

// Decision is the outcome of a combined permission/privilege check. Reason is
// only set on denial and names the first missing grant, suitable for logging
// and response bodies.
type Decision struct {
	Allowed bool
	Reason  string
}

// Service is the decision API every protected endpoint consults. It reads
// through the cache, falls back to the resolver on miss, and never mutates the
// grant store. All boolean predicates fail closed: an infrastructure fault is
// logged and answered as deny. Callers that need to tell a denial from a fault
// (to answer 500 instead of 403) use GetUserRoleInfo or CheckAccess, which
// surface the error alongside the result.
type Service struct {
	resolver  *Resolver
	cache     *Cache
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher InvalidationPublisher
	group     singleflight.Group
}

// ServiceOption customises Service construction.
type ServiceOption func(*Service)

// WithMetrics wires decision and cache counters.
func WithMetrics(metrics *observability.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = metrics }
}

// WithInvalidationPublisher wires a cross-replica invalidation publisher.
// ClearPermissionsCache announces every invalidation through it.
func WithInvalidationPublisher(publisher InvalidationPublisher) ServiceOption {
	return func(s *Service) { s.publisher = publisher }
}

// NewService builds the decision API over an injected resolver and cache. The
// cache is an explicit dependency, not a package global, so tests can start
// from a clean one.
func NewService(resolver *Resolver, cache *Cache, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserRoleInfo returns the user's authorization snapshot, reading through
// the cache. Concurrent misses for the same user collapse into a single
// resolver call. A snapshot is stored only after the resolver returns in
// full; a cancelled request leaves the cache untouched.
func (s *Service) GetUserRoleInfo(ctx context.Context, userID int64) (RoleInfo, error) {
	if info, ok := s.cache.Get(userID); ok {
		s.metrics.RecordCacheLookup(true)
		return info, nil
	}
	s.metrics.RecordCacheLookup(false)

	resultChan := s.group.DoChan(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		info, err := s.resolver.Resolve(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Put(userID, info)
		return info, nil
	})
	select {
	case <-ctx.Done():
		return RoleInfo{}, dataAccessErr("resolve", ctx.Err())
	case res := <-resultChan:
		if res.Err != nil {
			return RoleInfo{}, res.Err
		}
		return res.Val.(RoleInfo), nil
	}
}

// check evaluates one predicate against the user's snapshot, failing closed on
// infrastructure faults. Every boolean predicate funnels through here so each
// fault is logged exactly once and counted exactly once.
func (s *Service) check(ctx context.Context, userID int64, predicate func(RoleInfo) bool) bool {
	info, err := s.GetUserRoleInfo(ctx, userID)
	if err != nil {
		s.logger.Error("authorization check failed closed",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		s.metrics.RecordDecision("error")
		return false
	}
	allowed := predicate(info)
	if allowed {
		s.metrics.RecordDecision("allowed")
	} else {
		s.metrics.RecordDecision("denied")
	}
	return allowed
}

// HasPermission reports whether the user's active permission set contains code.
func (s *Service) HasPermission(ctx context.Context, userID int64, code string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.HasPermission(code)
	})
}

// HasPrivilege reports whether the user's privilege set contains code.
func (s *Service) HasPrivilege(ctx context.Context, userID int64, code string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.HasPrivilege(code)
	})
}

// HasAnyPermission reports whether the user holds at least one of the codes.
func (s *Service) HasAnyPermission(ctx context.Context, userID int64, codes ...string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		for _, code := range codes {
			if info.HasPermission(code) {
				return true
			}
		}
		return false
	})
}

// HasAllPermissions reports whether the user holds every one of the codes.
func (s *Service) HasAllPermissions(ctx context.Context, userID int64, codes ...string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		for _, code := range codes {
			if !info.HasPermission(code) {
				return false
			}
		}
		return true
	})
}

// HasAnyPrivilege reports whether the user holds at least one of the codes.
func (s *Service) HasAnyPrivilege(ctx context.Context, userID int64, codes ...string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		for _, code := range codes {
			if info.HasPrivilege(code) {
				return true
			}
		}
		return false
	})
}

// HasAllPrivileges reports whether the user holds every one of the codes.
func (s *Service) HasAllPrivileges(ctx context.Context, userID int64, codes ...string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		for _, code := range codes {
			if !info.HasPrivilege(code) {
				return false
			}
		}
		return true
	})
}

// CanPerformAction requires the module permission and, when privilege is
// non-empty, the privilege as well (AND, not OR).
func (s *Service) CanPerformAction(ctx context.Context, userID int64, permission, privilege string) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		if !info.HasPermission(permission) {
			return false
		}
		if privilege != "" && !info.HasPrivilege(privilege) {
			return false
		}
		return true
	})
}

// IsAdmin reports whether the user holds the admin archetype with the role row
// still enabled. A disabled admin role grants nothing, so flipping estado off
// takes effect as soon as the cached snapshot expires or is invalidated.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.Role == RoleAdmin && info.RoleActive
	})
}

// IsTrainer reports whether the user holds the trainer archetype.
func (s *Service) IsTrainer(ctx context.Context, userID int64) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.Role == RoleTrainer
	})
}

// IsClient reports whether the user holds the client archetype.
func (s *Service) IsClient(ctx context.Context, userID int64) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.Role == RoleClient
	})
}

// IsBeneficiary reports whether the user holds the beneficiary archetype.
func (s *Service) IsBeneficiary(ctx context.Context, userID int64) bool {
	return s.check(ctx, userID, func(info RoleInfo) bool {
		return info.Role == RoleBeneficiary
	})
}

// CheckAccess evaluates permission and optional privilege on a single snapshot
// fetch and reports a human-readable denial reason. Unlike the boolean
// predicates it surfaces infrastructure faults to the caller, which must fail
// closed and answer 500 rather than 403.
func (s *Service) CheckAccess(ctx context.Context, userID int64, permission, privilege string) (Decision, error) {
	info, err := s.GetUserRoleInfo(ctx, userID)
	if err != nil {
		s.metrics.RecordDecision("error")
		return Decision{}, err
	}
	return s.decide(info, permission, privilege), nil
}

// decide evaluates permission and optional privilege against an already
// fetched snapshot and records the outcome. The gate middleware shares it so
// a guarded request costs exactly one snapshot fetch.
func (s *Service) decide(info RoleInfo, permission, privilege string) Decision {
	if !info.HasPermission(permission) {
		s.metrics.RecordDecision("denied")
		return Decision{Reason: fmt.Sprintf("missing permission %s", permission)}
	}
	if privilege != "" && !info.HasPrivilege(privilege) {
		s.metrics.RecordDecision("denied")
		return Decision{Reason: fmt.Sprintf("missing privilege %s", privilege)}
	}
	s.metrics.RecordDecision("allowed")
	return Decision{Allowed: true}
}

// ClearPermissionsCache invalidates cached snapshots: the listed users, or
// every entry when none are given. Invalidation is immediate for this replica
// and announced to the others when a publisher is wired. Any operation that
// mutates a role's grants or a user's role assignment must call this, or
// accept the TTL staleness window.
func (s *Service) ClearPermissionsCache(ctx context.Context, userIDs ...int64) {
	if len(userIDs) == 0 {
		s.cache.InvalidateAll()
		s.publish(ctx, 0, true)
		return
	}
	for _, id := range userIDs {
		s.cache.Invalidate(id)
		s.publish(ctx, id, false)
	}
}

// applyInvalidation is the subscriber-side hook: it touches only the local
// cache and never republishes, so broadcasts cannot loop.
func (s *Service) applyInvalidation(userID int64, all bool) {
	if all {
		s.cache.InvalidateAll()
		return
	}
	s.cache.Invalidate(userID)
}

func (s *Service) publish(ctx context.Context, userID int64, all bool) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInvalidation(ctx, userID, all); err != nil {
		s.logger.Warn("publish cache invalidation",
			slog.Int64("user_id", userID),
			slog.Bool("all", all),
			slog.Any("error", err))
	}
}
