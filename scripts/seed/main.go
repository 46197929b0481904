// Command seed materialises the policy catalog into the grant store: role,
// permission and privilege rows are upserted, then each archetype receives its
// default grant set with replace semantics. Run it once at deployment and
// again whenever the catalog changes.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gymstack/gymstack/internal/app"
	"github.com/gymstack/gymstack/internal/authz"
	"github.com/gymstack/gymstack/internal/authz/catalog"
	"github.com/gymstack/gymstack/internal/platform/db"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	repo := authz.NewRepository(dbpool)

	for _, code := range catalog.RoleCodes() {
		if err := repo.EnsureRole(ctx, code, true); err != nil {
			logger.Error("seed role", slog.String("code", code), slog.Any("error", err))
			os.Exit(1)
		}
	}
	for _, perm := range catalog.Permissions() {
		if err := repo.EnsurePermission(ctx, perm.Code, perm.Description); err != nil {
			logger.Error("seed permission", slog.String("code", perm.Code), slog.Any("error", err))
			os.Exit(1)
		}
	}
	for _, priv := range catalog.Privileges() {
		if err := repo.EnsurePrivilege(ctx, priv.Code); err != nil {
			logger.Error("seed privilege", slog.String("code", priv.Code), slog.Any("error", err))
			os.Exit(1)
		}
	}

	for _, code := range catalog.RoleCodes() {
		if err := repo.AssignPermissionsToRole(ctx, code, catalog.DefaultPermissions(code)); err != nil {
			logger.Error("assign permissions", slog.String("role", code), slog.Any("error", err))
			os.Exit(1)
		}
		if err := repo.AssignPrivilegesToRole(ctx, code, catalog.DefaultPrivileges(code)); err != nil {
			logger.Error("assign privileges", slog.String("role", code), slog.Any("error", err))
			os.Exit(1)
		}
	}

	if missing, err := authz.VerifyCatalog(ctx, repo, logger); err != nil {
		logger.Error("verify catalog", slog.Any("error", err))
		os.Exit(1)
	} else if len(missing) > 0 {
		logger.Error("catalog still drifted after seeding", slog.Int("missing_codes", len(missing)))
		os.Exit(1)
	}

	logger.Info("grant store seeded",
		slog.Int("permissions", len(catalog.PermissionCodes())),
		slog.Int("privileges", len(catalog.PrivilegeCodes())))
}
