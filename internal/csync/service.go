package csync

import (
	"fmt"
	"time"
)

// Mode selects how the reconciler writes into the target store.
type Mode string

const (
	// ModeRecreate migrates to a fresh store every run and always creates.
	// Simple, but manual edits in the target are lost between runs.
	ModeRecreate Mode = "recreate"

	// ModeIncremental keeps the current store and patches existing records
	// located by natural key.
	ModeIncremental Mode = "incremental"
)

// Options is the validated run configuration for a SyncService. It is
// built once, at startup, by config validation.
type Options struct {
	Mode       Mode
	Window     Window
	WindowDays int // derives a ±N-day window at run start when bounds are unset
	CourseIDs  []int64
	ParentID   string // target container holding the tracking store
	StoreTitle string

	// MigrateSchema forces the schema swap before an incremental run.
	// Recreate runs always migrate.
	MigrateSchema bool
}

// Counts summarizes what a run did.
type Counts struct {
	Courses  int
	Created  int
	Updated  int
	Filtered int
}

// SyncService sequences a sync run: schema migration, course enumeration,
// window filtering, and per-assignment reconciliation. All work is
// synchronous and strictly ordered: the schema swap must finish before any
// record is written, and incremental upserts must observe prior upserts.
type SyncService struct {
	source    SourceGateway
	target    TargetStore
	sanitizer Sanitizer
	logger    Logger
	clock     Clock
	opts      Options
	counts    Counts
}

// NewSyncService creates a SyncService with the provided dependencies.
func NewSyncService(source SourceGateway, target TargetStore, sanitizer Sanitizer, logger Logger, clock Clock, opts Options) *SyncService {
	return &SyncService{
		source:    source,
		target:    target,
		sanitizer: sanitizer,
		logger:    logger,
		clock:     clock,
		opts:      opts,
	}
}

// Run executes one full sync and returns what it did. The first failure
// aborts the rest of the run; nothing already written is rolled back.
func (s *SyncService) Run() (Counts, error) {
	s.counts = Counts{}
	now := s.clock.Now()
	window := s.runWindow(now)

	var storeID string
	var err error
	if s.opts.Mode == ModeRecreate || s.opts.MigrateSchema {
		storeID, err = s.MigrateSchema(s.opts.ParentID, s.opts.StoreTitle)
	} else {
		storeID, err = s.findLiveStore(s.opts.ParentID, s.opts.StoreTitle)
	}
	if err != nil {
		s.logger.Error("run failed", "error", err)
		return s.counts, err
	}

	courses, err := s.source.ListActiveCourses(s.opts.CourseIDs)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		return s.counts, fmt.Errorf("listing courses: %w", err)
	}
	s.logger.Info("courses resolved", "count", len(courses))

	for _, course := range courses {
		if err := s.syncCourse(storeID, course, window, now); err != nil {
			s.logger.Error("run failed", "course", course.ID, "error", err)
			return s.counts, err
		}
		s.counts.Courses++
	}

	s.logger.Info("sync complete",
		"courses", s.counts.Courses,
		"created", s.counts.Created,
		"updated", s.counts.Updated,
		"filtered", s.counts.Filtered,
	)
	return s.counts, nil
}

// syncCourse reconciles every in-window assignment of one course.
func (s *SyncService) syncCourse(storeID string, course Course, window Window, now time.Time) error {
	s.logger.Info("processing course", "course", course.ID, "name", course.ShortName)

	assignments, err := s.source.ListAssignments(course.ID)
	if err != nil {
		return fmt.Errorf("listing assignments for course %d: %w", course.ID, err)
	}

	for _, a := range assignments {
		if !window.Includes(a.DueAt) {
			s.logger.Debug("record filtered", "assignment", a.ID, "course", course.ID)
			s.counts.Filtered++
			continue
		}

		if a.Submission == nil {
			sub, err := s.source.GetSubmission(course.ID, a.ID)
			if err != nil {
				return fmt.Errorf("fetching submission for assignment %d: %w", a.ID, err)
			}
			a.Submission = sub
		}

		if err := s.upsertAssignment(storeID, course, a, now); err != nil {
			return err
		}
	}

	return nil
}

// runWindow resolves the effective window for a run. When only WindowDays
// is configured the bounds become [now-N days, now+N days].
func (s *SyncService) runWindow(now time.Time) Window {
	window := s.opts.Window
	if s.opts.WindowDays > 0 && window.Start == nil && window.End == nil {
		span := time.Duration(s.opts.WindowDays) * 24 * time.Hour
		start := now.Add(-span)
		end := now.Add(span)
		window.Start = &start
		window.End = &end
	}
	return window
}
