package csync

import "time"

// SyncOperation is one recorded CLI run.
type SyncOperation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "running", "success", or "error"
	Created    int
	Updated    int
	Filtered   int
}

// RunLog records sync runs in local storage so `csync history` can show
// what happened when. It is consumed by the app layer, not the service.
type RunLog interface {
	// CreateOperation records the start of a run.
	CreateOperation(operation, parameters string) (*SyncOperation, error)

	// FinishOperation finalizes a run with its outcome and counts.
	FinishOperation(id int64, status string, counts Counts) error

	// ListOperations returns the most recent runs, newest first.
	ListOperations(limit int) ([]*SyncOperation, error)

	// Close closes the underlying storage.
	Close() error
}
