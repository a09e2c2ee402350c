package testutil

import (
	"fmt"
	"sync"

	"csync-go/internal/csync"
)

// FakeRecord is one record in a FakeTargetStore.
type FakeRecord struct {
	ID    string
	Props csync.RecordProperties
}

type fakeStore struct {
	store   csync.Store
	schema  csync.Schema
	records []*FakeRecord
}

// FakeTargetStore is an in-memory TargetStore. It tracks the order of
// mutating calls so tests can assert create-before-archive sequencing.
type FakeTargetStore struct {
	mu     sync.Mutex
	stores map[string]*fakeStore
	nextID int

	// Ops records mutating calls in order, e.g. "create:db-1", "archive:db-0".
	Ops []string
	// CreateSchemas records the schema argument of each CreateStore call.
	CreateSchemas []csync.Schema

	// Injectable failures.
	ListErr    error
	SchemaErr  error
	CreateErr  error
	ArchiveErr error
	QueryErr   error
	RecordErr  error
	PatchErr   error
}

// NewFakeTargetStore creates an empty FakeTargetStore.
func NewFakeTargetStore() *FakeTargetStore {
	return &FakeTargetStore{stores: make(map[string]*fakeStore)}
}

// Seed adds a pre-existing store with the given schema and returns its ID.
func (f *FakeTargetStore) Seed(parentID, title string, schema csync.Schema, archived bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.stores[id] = &fakeStore{
		store:  csync.Store{ID: id, Title: title, ParentID: parentID, Archived: archived},
		schema: schema,
	}
	return id
}

// Records returns the records of a store in creation order.
func (f *FakeTargetStore) Records(storeID string) []*FakeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.stores[storeID]; ok {
		return append([]*FakeRecord{}, st.records...)
	}
	return nil
}

func (f *FakeTargetStore) newID() string {
	id := fmt.Sprintf("db-%d", f.nextID)
	f.nextID++
	return id
}

func (f *FakeTargetStore) ListChildStores(parentID string) ([]csync.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []csync.Store
	for _, st := range f.stores {
		if st.store.ParentID == parentID {
			out = append(out, st.store)
		}
	}
	return out, nil
}

func (f *FakeTargetStore) ReadSchema(storeID string) (csync.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SchemaErr != nil {
		return nil, f.SchemaErr
	}
	st, ok := f.stores[storeID]
	if !ok {
		return nil, fmt.Errorf("unknown store %s", storeID)
	}
	return st.schema, nil
}

func (f *FakeTargetStore) CreateStore(parentID, title string, schema csync.Schema) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateSchemas = append(f.CreateSchemas, schema)
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	id := f.newID()
	f.stores[id] = &fakeStore{
		store:  csync.Store{ID: id, Title: title, ParentID: parentID},
		schema: schema,
	}
	f.Ops = append(f.Ops, "create:"+id)
	return id, nil
}

func (f *FakeTargetStore) ArchiveStore(storeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ArchiveErr != nil {
		return f.ArchiveErr
	}
	st, ok := f.stores[storeID]
	if !ok {
		return fmt.Errorf("unknown store %s", storeID)
	}
	st.store.Archived = true
	f.Ops = append(f.Ops, "archive:"+storeID)
	return nil
}

func (f *FakeTargetStore) QueryByIdentity(storeID, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.QueryErr != nil {
		return "", f.QueryErr
	}
	st, ok := f.stores[storeID]
	if !ok {
		return "", fmt.Errorf("unknown store %s", storeID)
	}
	for _, r := range st.records {
		if r.Props.SourceID == key {
			return r.ID, nil
		}
	}
	return "", nil
}

func (f *FakeTargetStore) CreateRecord(storeID string, props csync.RecordProperties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RecordErr != nil {
		return f.RecordErr
	}
	st, ok := f.stores[storeID]
	if !ok {
		return fmt.Errorf("unknown store %s", storeID)
	}
	if st.store.Archived {
		return fmt.Errorf("store %s is archived", storeID)
	}
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.nextID++
	st.records = append(st.records, &FakeRecord{ID: id, Props: props})
	f.Ops = append(f.Ops, "createrec:"+id)
	return nil
}

func (f *FakeTargetStore) PatchRecord(recordID string, props csync.RecordProperties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PatchErr != nil {
		return f.PatchErr
	}
	for _, st := range f.stores {
		for _, r := range st.records {
			if r.ID == recordID {
				r.Props = props
				f.Ops = append(f.Ops, "patch:"+recordID)
				return nil
			}
		}
	}
	return fmt.Errorf("unknown record %s", recordID)
}
