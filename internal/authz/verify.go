package authz

import (
	"context"
	"log/slog"

	"github.com/gymstack/gymstack/internal/authz/catalog"
)

// VerifyCatalog compares the policy catalog against the grant store and
// returns the catalog codes with no matching row. Such drift means a gate in
// code references a grant nobody can hold; it is logged as a warning and left
// for manual reconciliation (usually re-running the seed tool). It never
// fails the process: missing rows only make checks deny, which is the safe
// direction.
func VerifyCatalog(ctx context.Context, store GrantStore, logger *slog.Logger) ([]string, error) {
	storedPerms, err := store.ListPermissionCodes(ctx)
	if err != nil {
		return nil, err
	}
	storedPrivs, err := store.ListPrivilegeCodes(ctx)
	if err != nil {
		return nil, err
	}

	missing := missingCodes(catalog.PermissionCodes(), storedPerms)
	missing = append(missing, missingCodes(catalog.PrivilegeCodes(), storedPrivs)...)

	for _, code := range missing {
		logger.Warn("catalog code has no grant store row",
			slog.String("code", code))
	}
	return missing, nil
}

func missingCodes(wanted, stored []string) []string {
	present := make(map[string]struct{}, len(stored))
	for _, code := range stored {
		present[code] = struct{}{}
	}
	var missing []string
	for _, code := range wanted {
		if _, ok := present[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}
