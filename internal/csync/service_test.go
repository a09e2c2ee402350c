package csync_test

import (
	"fmt"
	"testing"
	"time"

	"csync-go/internal/csync"
	"csync-go/internal/sanitize"
	"csync-go/internal/testutil"
)

func newRunService(gw *testutil.FakeGateway, store *testutil.FakeTargetStore, opts csync.Options) *csync.SyncService {
	return csync.NewSyncService(gw, store, sanitize.NewCleaner(),
		csync.NewNopLogger(), testutil.FixedClock(), opts)
}

// fixtureGateway returns a gateway with one active course and one
// assignment due one day after the fixed test clock.
func fixtureGateway() *testutil.FakeGateway {
	gw := testutil.NewFakeGateway()
	gw.Courses = []csync.Course{{ID: 101, ShortName: "CS101", FullName: "Intro to CS"}}
	due := testutil.FixedClock().Now().Add(24 * time.Hour)
	gw.Assignments[101] = []csync.Assignment{
		{
			ID:         5001,
			Name:       "Homework 1",
			CourseID:   101,
			DueAt:      &due,
			Submission: &csync.Submission{WorkflowState: "unsubmitted"},
		},
	}
	return gw
}

func defaultOptions(mode csync.Mode) csync.Options {
	return csync.Options{
		Mode:       mode,
		WindowDays: 7,
		ParentID:   "page-1",
		StoreTitle: "Assignments",
	}
}

func TestSyncService_Run(t *testing.T) {
	t.Run("recreate mode migrates and creates records", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()
		oldID := store.Seed("page-1", "Assignments", csync.Schema{"Name": "x"}, false)

		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Courses != 1 || counts.Created != 1 || counts.Updated != 0 {
			t.Errorf("counts = %+v, want 1 course, 1 created, 0 updated", counts)
		}

		stores, _ := store.ListChildStores("page-1")
		var liveID string
		for _, st := range stores {
			if st.ID == oldID && !st.Archived {
				t.Error("old store still live after recreate run")
			}
			if !st.Archived {
				liveID = st.ID
			}
		}

		records := store.Records(liveID)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Props.SourceID != "5001" {
			t.Errorf("SourceID = %q, want %q", records[0].Props.SourceID, "5001")
		}
		if records[0].Props.Status != csync.StatusNotStarted {
			t.Errorf("Status = %q, want %q", records[0].Props.Status, csync.StatusNotStarted)
		}
	})

	t.Run("incremental mode reuses the live store", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()
		storeID := store.Seed("page-1", "Assignments", nil, false)

		svc := newRunService(gw, store, defaultOptions(csync.ModeIncremental))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if len(store.CreateSchemas) != 0 {
			t.Error("incremental run created a new store")
		}
		if got := len(store.Records(storeID)); got != 1 {
			t.Errorf("got %d records in live store, want 1", got)
		}
	})

	t.Run("incremental mode fails without a live store", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()

		svc := newRunService(gw, store, defaultOptions(csync.ModeIncremental))
		if _, err := svc.Run(); err == nil {
			t.Fatal("expected error when no live store exists")
		}
	})

	t.Run("running incrementally twice yields one record", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()
		storeID := store.Seed("page-1", "Assignments", nil, false)

		svc := newRunService(gw, store, defaultOptions(csync.ModeIncremental))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("first Run() error = %v", err)
		}

		// The assignment progressed between runs.
		now := testutil.FixedClock().Now()
		gw.Assignments[101][0].Submission = &csync.Submission{
			WorkflowState: "submitted",
			SubmittedAt:   &now,
		}

		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
		if counts.Created != 0 || counts.Updated != 1 {
			t.Errorf("counts = %+v, want 0 created, 1 updated", counts)
		}

		records := store.Records(storeID)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Props.Status != csync.StatusCompleted {
			t.Errorf("Status = %q, want %q (second run wins)", records[0].Props.Status, csync.StatusCompleted)
		}
	})

	t.Run("course allow-list restricts the run", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Courses = append(gw.Courses, csync.Course{ID: 102, ShortName: "MA201"})
		gw.Assignments[102] = []csync.Assignment{{ID: 6001, Name: "Problem set", CourseID: 102}}

		store := testutil.NewFakeTargetStore()
		opts := defaultOptions(csync.ModeRecreate)
		opts.CourseIDs = []int64{101}

		svc := newRunService(gw, store, opts)
		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Courses != 1 {
			t.Errorf("courses = %d, want 1", counts.Courses)
		}
	})

	t.Run("out-of-window assignments are filtered and counted", func(t *testing.T) {
		gw := fixtureGateway()
		farFuture := testutil.FixedClock().Now().Add(90 * 24 * time.Hour)
		gw.Assignments[101] = append(gw.Assignments[101], csync.Assignment{
			ID:    5002,
			Name:  "Final project",
			DueAt: &farFuture,
		})

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Created != 1 || counts.Filtered != 1 {
			t.Errorf("counts = %+v, want 1 created, 1 filtered", counts)
		}
	})

	t.Run("undated assignments skipped unless configured", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Assignments[101] = []csync.Assignment{{ID: 5003, Name: "Reading"}}

		store := testutil.NewFakeTargetStore()
		opts := defaultOptions(csync.ModeRecreate)

		svc := newRunService(gw, store, opts)
		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Created != 0 || counts.Filtered != 1 {
			t.Errorf("counts = %+v, want 0 created, 1 filtered", counts)
		}

		opts.Window.IncludeUndated = true
		svc = newRunService(gw, store, opts)
		counts, err = svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Created != 1 || counts.Filtered != 0 {
			t.Errorf("counts = %+v, want 1 created, 0 filtered", counts)
		}
	})

	t.Run("explicit window bounds override window days", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()

		// Window well in the past; the fixture assignment is due tomorrow.
		start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
		opts := defaultOptions(csync.ModeRecreate)
		opts.Window = csync.Window{Start: &start, End: &end}

		svc := newRunService(gw, store, opts)
		counts, err := svc.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if counts.Created != 0 || counts.Filtered != 1 {
			t.Errorf("counts = %+v, want 0 created, 1 filtered", counts)
		}
	})

	t.Run("fetches submission when listing omitted it", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Assignments[101][0].Submission = nil
		now := testutil.FixedClock().Now()
		gw.Submissions[5001] = &csync.Submission{WorkflowState: "graded", GradedAt: &now}

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if len(gw.SubmissionCalls) != 1 || gw.SubmissionCalls[0] != 5001 {
			t.Errorf("submission calls = %v, want [5001]", gw.SubmissionCalls)
		}

		stores, _ := store.ListChildStores("page-1")
		records := store.Records(stores[0].ID)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Props.Status != csync.StatusCompleted {
			t.Errorf("Status = %q, want %q", records[0].Props.Status, csync.StatusCompleted)
		}
	})

	t.Run("missing submission on the wire stays absent", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Assignments[101][0].Submission = nil

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		stores, _ := store.ListChildStores("page-1")
		records := store.Records(stores[0].ID)
		if records[0].Props.Submitted {
			t.Error("Submitted = true, want false for absent submission")
		}
	})

	t.Run("first course failure aborts the run", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Courses = append(gw.Courses, csync.Course{ID: 102, ShortName: "MA201"})
		gw.AssignmentsErr = fmt.Errorf("boom")

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))

		counts, err := svc.Run()
		if err == nil {
			t.Fatal("expected error")
		}
		if counts.Courses != 0 {
			t.Errorf("courses = %d, want 0 (run aborted)", counts.Courses)
		}
	})

	t.Run("record write failure aborts the run", func(t *testing.T) {
		gw := fixtureGateway()
		store := testutil.NewFakeTargetStore()
		store.RecordErr = fmt.Errorf("boom")

		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		if _, err := svc.Run(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("nameless assignments get a placeholder title", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Assignments[101][0].Name = ""

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		stores, _ := store.ListChildStores("page-1")
		records := store.Records(stores[0].ID)
		if records[0].Props.Name != "Untitled assignment" {
			t.Errorf("Name = %q, want %q", records[0].Props.Name, "Untitled assignment")
		}
	})

	t.Run("descriptions are sanitized before writing", func(t *testing.T) {
		gw := fixtureGateway()
		gw.Assignments[101][0].Description = "<p>Read <b>chapter</b> one.</p>"

		store := testutil.NewFakeTargetStore()
		svc := newRunService(gw, store, defaultOptions(csync.ModeRecreate))
		if _, err := svc.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		stores, _ := store.ListChildStores("page-1")
		records := store.Records(stores[0].ID)
		if got := records[0].Props.Description; got != "Read chapter one." {
			t.Errorf("Description = %q, want %q", got, "Read chapter one.")
		}
	})
}
