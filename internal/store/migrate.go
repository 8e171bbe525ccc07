package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// MigrateIfNeeded relocates LegacyKeys from legacy into local exactly once.
//
// When local already carries the migrated flag nothing is written. Otherwise
// the keys present in legacy are copied into local in a single write and the
// flag is set whether or not anything was copied. The flag is the only guard;
// a partially applied copy is not rolled back. A nil legacy store is treated
// as empty. It reports whether a migration ran.
func MigrateIfNeeded(ctx context.Context, local, legacy Store) (bool, error) {
	flag, err := local.Get(ctx, KeyMigratedToLocal)
	if err != nil {
		return false, fmt.Errorf("read migration flag: %w", err)
	}
	if migrated(flag[KeyMigratedToLocal]) {
		return false, nil
	}

	if legacy != nil {
		found, err := legacy.Get(ctx, LegacyKeys...)
		if err != nil {
			return false, fmt.Errorf("read legacy store: %w", err)
		}
		if len(found) > 0 {
			if err := local.Set(ctx, found); err != nil {
				return false, fmt.Errorf("copy legacy keys: %w", err)
			}
		}
	}

	if err := local.Set(ctx, Values{KeyMigratedToLocal: json.RawMessage("true")}); err != nil {
		return false, fmt.Errorf("set migration flag: %w", err)
	}
	return true, nil
}

func migrated(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
