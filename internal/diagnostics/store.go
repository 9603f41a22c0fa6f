// Package diagnostics is an optional, persisted trace/error sink for an
// evaluation: an EvalRun row per Selector.Evaluate/Run call and a
// TraceEvent row per trace/warning notification, queryable afterward for
// replay or audit. It is never imported by internal/parse, internal/expr,
// internal/eval or any other core package (the core itself produces no
// persisted state); a host wires a Store's RunRecorder
// into a facade.Selector as an errors.ErrorListener/errors.TraceListener
// only when it opts in.
//
// The driver is the pure-Go github.com/glebarez/sqlite build; this store
// only ever needs a local embedded database.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/xpathcore/internal/errors"
)

// Store owns the underlying database connection.
type Store struct {
	db *gorm.DB
}

// Open connects to (and, for a file DSN, creates) a SQLite database at
// dsn and migrates the EvalRun/TraceEvent tables into it. Pass ":memory:"
// for a throwaway store, the common case in tests and short-lived CLI
// invocations.
func Open(dsn string, debug bool) (*Store, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("diagnostics: creating database directory: %w", err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: connecting to %s: %w", dsn, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}
	if err := db.AutoMigrate(&EvalRun{}, &TraceEvent{}); err != nil {
		return nil, fmt.Errorf("diagnostics: migrating: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BeginRun creates a new EvalRun row and returns a RunRecorder that
// appends TraceEvent rows to it as it observes notifications, to be
// wired into a facade.Selector via SetErrorListener/SetTraceListener.
func (s *Store) BeginRun(language, source string) (*RunRecorder, error) {
	run := &EvalRun{ID: uuid.NewString(), Language: language, Source: source}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("diagnostics: creating run: %w", err)
	}
	return &RunRecorder{store: s, runID: run.ID}, nil
}

// Runs returns every EvalRun recorded so far, most recent first.
func (s *Store) Runs() ([]EvalRun, error) {
	var runs []EvalRun
	err := s.db.Order("started_at desc").Find(&runs).Error
	return runs, err
}

// Events returns every TraceEvent recorded for runID, in the order they
// were observed.
func (s *Store) Events(runID string) ([]TraceEvent, error) {
	var events []TraceEvent
	err := s.db.Where("run_id = ?", runID).Order("sequence asc").Find(&events).Error
	return events, err
}

// RunRecorder implements errors.ErrorListener and errors.TraceListener,
// persisting every notification it receives as a TraceEvent row tagged
// with its run and a monotonic sequence number, and rolling the fatal
// error (if any) up onto the owning EvalRun row.
type RunRecorder struct {
	store *Store
	runID string
	seq   int
}

func (r *RunRecorder) nextSequence() int {
	r.seq++
	return r.seq
}

// Trace persists one expression entry/exit notification.
func (r *RunRecorder) Trace(event errors.TraceEvent) {
	loc := ""
	if event.Locator != nil {
		loc = event.Locator.String()
	}
	detail, _ := json.Marshal(event.Detail)
	r.store.db.Create(&TraceEvent{
		RunID:    r.runID,
		Sequence: r.nextSequence(),
		Label:    event.Label,
		Enter:    event.Enter,
		Locator:  loc,
		Detail:   datatypes.JSON(detail),
	})
}

// Error persists the fatal error that aborted evaluation and marks the
// owning EvalRun as failed.
func (r *RunRecorder) Error(severity errors.Severity, err *errors.XError) {
	detail, _ := json.Marshal(map[string]string{"severity": string(severity)})
	r.store.db.Create(&TraceEvent{
		RunID:    r.runID,
		Sequence: r.nextSequence(),
		Label:    "error",
		Locator:  locatorString(err),
		Detail:   datatypes.JSON(detail),
	})
	r.store.db.Model(&EvalRun{}).Where("id = ?", r.runID).Updates(map[string]any{
		"succeeded":     false,
		"error_code":    string(err.Code),
		"error_message": err.Error(),
	})
}

// Warning persists a non-fatal warning notification.
func (r *RunRecorder) Warning(code errors.Code, message string, loc *errors.Locator) {
	locStr := ""
	if loc != nil {
		locStr = loc.String()
	}
	detail, _ := json.Marshal(map[string]string{"code": string(code), "message": message})
	r.store.db.Create(&TraceEvent{
		RunID:    r.runID,
		Sequence: r.nextSequence(),
		Label:    "warning",
		Locator:  locStr,
		Detail:   datatypes.JSON(detail),
	})
}

// Finish marks the run's end time and final outcome. Call it after the
// evaluation that started the run completes; an Error notification
// already sets succeeded=false, so once one has fired Finish only records
// the end time and leaves succeeded false.
func (r *RunRecorder) Finish(succeeded bool) error {
	now := time.Now()
	updates := map[string]any{"ended_at": &now}
	var run EvalRun
	if err := r.store.db.First(&run, "id = ?", r.runID).Error; err != nil {
		return err
	}
	if run.ErrorCode == "" {
		updates["succeeded"] = succeeded
	}
	return r.store.db.Model(&EvalRun{}).Where("id = ?", r.runID).Updates(updates).Error
}

func locatorString(err *errors.XError) string {
	if err.Locator == nil {
		return ""
	}
	return err.Locator.String()
}
