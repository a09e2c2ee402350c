package app

import (
	"fmt"
	"io"

	"csync-go/internal/canvas"
	"csync-go/internal/config"
	"csync-go/internal/csync"
	"csync-go/internal/database"
	"csync-go/internal/notion"
	"csync-go/internal/sanitize"
)

// SyncApp is the application layer between the CLI and SyncService.
// It constructs all dependencies from config, exposes the high-level
// operations, and records each run in the local run log.
type SyncApp struct {
	cfg     *config.Config
	opts    csync.Options
	runlog  csync.RunLog
	service *csync.SyncService
	op      *SyncOperation
	logC    io.Closer
}

// NewSyncApp creates a fully wired SyncApp from the given config.
// operation identifies the CLI command being run (e.g. "Sync",
// "MigrateSchema"). Validation happens here, before any network call;
// the caller must call Close when done.
func NewSyncApp(cfg *config.Config, operation string) (*SyncApp, error) {
	opts, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	source := canvas.NewClient(cfg.Canvas.BaseURL, cfg.Canvas.APIToken())
	target := notion.NewClient(cfg.Notion.APIToken())

	runlog, err := database.NewRunLogFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating run log: %w", err)
	}

	runID := csync.UUIDGenerator{}.New()
	logger, logC, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		runlog.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := csync.NewSyncService(source, target, sanitize.NewCleaner(),
		&slogAdapter{l: logger}, csync.RealClock{}, opts)

	parameters := fmt.Sprintf("mode=%s window_days=%d courses=%d",
		opts.Mode, opts.WindowDays, len(opts.CourseIDs))

	return &SyncApp{
		cfg:     cfg,
		opts:    opts,
		runlog:  runlog,
		service: svc,
		op:      NewSyncOperation(operation, parameters),
		logC:    logC,
	}, nil
}

// persistOperation saves the operation to the run log, giving it an ID.
// Only commands that actually talk to the external APIs persist one.
func (a *SyncApp) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}
	rec, err := a.runlog.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting sync operation: %w", err)
	}
	a.op.ID = rec.ID
	return nil
}

// Sync executes one full reconciliation run.
func (a *SyncApp) Sync() (csync.Counts, error) {
	if err := a.persistOperation(); err != nil {
		return csync.Counts{}, err
	}
	counts, err := a.service.Run()
	a.op.Counts = counts
	if err != nil {
		a.op.Status = "error"
	}
	return counts, err
}

// MigrateSchema performs only the schema swap and returns the new store ID.
func (a *SyncApp) MigrateSchema() (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	id, err := a.service.MigrateSchema(a.opts.ParentID, a.opts.StoreTitle)
	if err != nil {
		a.op.Status = "error"
	}
	return id, err
}

// History returns the most recent recorded runs.
func (a *SyncApp) History(limit int) ([]*csync.SyncOperation, error) {
	return a.runlog.ListOperations(limit)
}

// Close finalizes the operation record and closes all resources.
func (a *SyncApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.runlog.FinishOperation(a.op.ID, a.op.Status, a.op.Counts); err != nil {
			firstErr = fmt.Errorf("finishing sync operation: %w", err)
		}
	}

	if err := a.runlog.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing run log: %w", err)
	}

	if a.logC != nil {
		a.logC.Close()
	}

	return firstErr
}
