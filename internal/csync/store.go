package csync

import "time"

// Store is a record store (tracking database) in the target system.
type Store struct {
	ID       string
	Title    string
	ParentID string
	Archived bool
}

// Schema is the target-side field definition of a store, in the target's
// own wire shape. The core only ever copies and cleans it; it never
// interprets individual field types.
type Schema map[string]any

// RecordProperties holds the target-side field values for one assignment.
// Pointer fields are omitted from the target payload when nil, since the
// target API rejects explicit nulls for unset structured fields. A Score
// of zero is a real score, distinct from absence.
type RecordProperties struct {
	Name        string
	SourceID    string // string form of the assignment's natural key
	CourseName  string
	Status      Status
	DueAt       *time.Time
	UpdatedAt   *time.Time
	SubmittedAt *time.Time
	URL         string
	Points      *float64
	Score       *float64
	Submitted   bool // whether a submission sub-object was present
	Description string
}

// TargetStore is the write side of the mirror. Implementations own
// transport concerns (pagination, retry) and the target's property
// serialization format.
type TargetStore interface {
	// ListChildStores returns the stores directly under a container.
	ListChildStores(parentID string) ([]Store, error)

	// ReadSchema fetches the full schema definition of a store.
	ReadSchema(storeID string) (Schema, error)

	// CreateStore creates a new store under parentID. A nil schema means
	// the implementation's baseline field set.
	CreateStore(parentID, title string, schema Schema) (string, error)

	// ArchiveStore marks a store archived. Archived stores are never
	// written to again.
	ArchiveStore(storeID string) error

	// QueryByIdentity returns the ID of the record whose identity field
	// equals key, or "" if no such record exists.
	QueryByIdentity(storeID, key string) (string, error)

	// CreateRecord creates a new record in a store.
	CreateRecord(storeID string, props RecordProperties) error

	// PatchRecord updates an existing record's properties.
	PatchRecord(recordID string, props RecordProperties) error
}

// Sanitizer converts source rich text into plain text safe for the target.
type Sanitizer interface {
	// Clean strips markup, unescapes entities, and caps the result at
	// limit runes.
	Clean(s string, limit int) string
}
