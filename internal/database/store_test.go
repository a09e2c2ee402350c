package database_test

import (
	"testing"
	"time"

	"csync-go/internal/csync"
	"csync-go/internal/testutil"
)

func TestSQLiteRunLog_CreateOperation(t *testing.T) {
	rl := testutil.NewTestRunLog(t)

	op, err := rl.CreateOperation("Sync", "mode=recreate")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	if op.ID == 0 {
		t.Error("ID = 0, want auto-increment value")
	}
	if op.Operation != "Sync" {
		t.Errorf("Operation = %q, want %q", op.Operation, "Sync")
	}
	if op.Parameters != "mode=recreate" {
		t.Errorf("Parameters = %q, want %q", op.Parameters, "mode=recreate")
	}
	if op.Status != "running" {
		t.Errorf("Status = %q, want %q", op.Status, "running")
	}
	if op.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil", op.FinishedAt)
	}
	if op.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
}

func TestSQLiteRunLog_FinishOperation(t *testing.T) {
	rl := testutil.NewTestRunLog(t)

	op, err := rl.CreateOperation("Sync", "")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	counts := csync.Counts{Courses: 2, Created: 5, Updated: 3, Filtered: 7}
	if err := rl.FinishOperation(op.ID, "success", counts); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := rl.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}

	got := ops[0]
	if got.Status != "success" {
		t.Errorf("Status = %q, want %q", got.Status, "success")
	}
	if got.FinishedAt == nil {
		t.Fatal("FinishedAt = nil after finish")
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Errorf("FinishedAt %v before StartedAt %v", got.FinishedAt, got.StartedAt)
	}
	if got.Created != 5 || got.Updated != 3 || got.Filtered != 7 {
		t.Errorf("counts = (%d, %d, %d), want (5, 3, 7)", got.Created, got.Updated, got.Filtered)
	}
}

func TestSQLiteRunLog_ListOperations(t *testing.T) {
	rl := testutil.NewTestRunLog(t)

	for i := 0; i < 5; i++ {
		if _, err := rl.CreateOperation("Sync", ""); err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	t.Run("newest first", func(t *testing.T) {
		ops, err := rl.ListOperations(10)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 5 {
			t.Fatalf("got %d operations, want 5", len(ops))
		}
		for i := 1; i < len(ops); i++ {
			if ops[i].ID > ops[i-1].ID {
				t.Errorf("operations not newest-first at index %d", i)
			}
		}
	})

	t.Run("respects the limit", func(t *testing.T) {
		ops, err := rl.ListOperations(2)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 2 {
			t.Errorf("got %d operations, want 2", len(ops))
		}
	})

	t.Run("empty log yields no operations", func(t *testing.T) {
		empty := testutil.NewTestRunLog(t)
		ops, err := empty.ListOperations(10)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 0 {
			t.Errorf("got %d operations, want 0", len(ops))
		}
	})
}
