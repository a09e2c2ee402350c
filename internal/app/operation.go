package app

import "csync-go/internal/csync"

// SyncOperation tracks a CLI run that may be recorded in the run log.
// Operations are created in memory with ID=0; commands that talk to the
// external APIs persist them (giving them an auto-increment ID).
type SyncOperation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	Counts     csync.Counts
}

// NewSyncOperation creates a new in-memory sync operation.
func NewSyncOperation(operation, parameters string) *SyncOperation {
	return &SyncOperation{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this operation has been saved to the run log.
func (op *SyncOperation) Persisted() bool {
	return op.ID != 0
}
