package csync

import "fmt"

// MigrateSchema replaces the live store titled title under parentID with a
// fresh one carrying an equivalent, cleaned schema, then archives the old
// store. The target system does not support altering a store's schema in
// place, so the swap is create-before-archive: a failure before the create
// leaves the old store live and untouched, and a failure after it leaves
// exactly one usable store.
//
// The swap is not transactional. If archiving fails after the create
// succeeded, the returned error is a *MigrationInconsistencyError and the
// new store's ID is still returned.
func (s *SyncService) MigrateSchema(parentID, title string) (string, error) {
	s.logger.Info("schema migration started", "parent", parentID, "title", title)

	stores, err := s.target.ListChildStores(parentID)
	if err != nil {
		return "", fmt.Errorf("listing stores under %s: %w", parentID, err)
	}

	var old *Store
	for i := range stores {
		if stores[i].Title == title && !stores[i].Archived {
			old = &stores[i]
			break
		}
	}

	// nil schema asks the target for its baseline field set.
	var schema Schema
	if old != nil {
		read, err := s.target.ReadSchema(old.ID)
		if err != nil {
			return "", fmt.Errorf("reading schema of store %s: %w", old.ID, err)
		}
		schema = CleanSchema(read)
	}

	newID, err := s.target.CreateStore(parentID, title, schema)
	if err != nil {
		return "", fmt.Errorf("creating store: %w", err)
	}

	if old != nil {
		if err := s.target.ArchiveStore(old.ID); err != nil {
			return newID, &MigrationInconsistencyError{
				NewStoreID: newID,
				OldStoreID: old.ID,
				Err:        err,
			}
		}
	}

	s.logger.Info("schema migration completed", "store", newID)
	return newID, nil
}

// findLiveStore locates the non-archived store titled title under parentID
// without migrating. Used by incremental runs that keep the current store.
func (s *SyncService) findLiveStore(parentID, title string) (string, error) {
	stores, err := s.target.ListChildStores(parentID)
	if err != nil {
		return "", fmt.Errorf("listing stores under %s: %w", parentID, err)
	}
	for _, st := range stores {
		if st.Title == title && !st.Archived {
			return st.ID, nil
		}
	}
	return "", fmt.Errorf("no live store titled %q under container %s", title, parentID)
}

// CleanSchema returns a deep copy of schema with empty-string, null, and
// empty-list description entries removed at every nesting level. The target
// API rejects such descriptions on resubmission. Field names, types, option
// sets, and non-empty descriptions pass through verbatim.
func CleanSchema(schema Schema) Schema {
	if schema == nil {
		return nil
	}
	cleaned, _ := cleanValue(map[string]any(schema)).(map[string]any)
	return Schema(cleaned)
}

func cleanValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if k == "description" && emptyDescription(child) {
				continue
			}
			out[k] = cleanValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = cleanValue(child)
		}
		return out
	default:
		return v
	}
}

func emptyDescription(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case string:
		return d == ""
	case []any:
		return len(d) == 0
	}
	return false
}
