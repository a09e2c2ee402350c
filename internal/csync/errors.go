package csync

import "fmt"

// UpstreamError is a non-success response from one of the external APIs.
// The core never retries these; retry policy for transient failures lives
// in the transport clients.
type UpstreamError struct {
	API        string // "canvas" or "notion"
	StatusCode int
	Body       string // response snippet, for diagnostics
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API returned %d", e.API, e.StatusCode)
	}
	return fmt.Sprintf("%s API returned %d: %s", e.API, e.StatusCode, e.Body)
}

// MigrationInconsistencyError reports a schema swap left half done: the
// replacement store was created but the predecessor could not be archived,
// so two live stores with the same title now coexist. This state requires
// manual reconciliation and must not be mistaken for a generic upstream
// failure.
type MigrationInconsistencyError struct {
	NewStoreID string
	OldStoreID string
	Err        error
}

func (e *MigrationInconsistencyError) Error() string {
	return fmt.Sprintf("schema migration inconsistent: store %s created but predecessor %s not archived: %v",
		e.NewStoreID, e.OldStoreID, e.Err)
}

func (e *MigrationInconsistencyError) Unwrap() error { return e.Err }
