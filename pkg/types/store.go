package types

import "errors"

// Store persists recorded runs and their frames. Callers attach to a
// backend, record and query runs, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach flushes pending state and releases backend resources.
	// Idempotent. After Detach, operations return ErrStoreDetached.
	Detach() error

	// CreateRun stores a new run in the running state. When run.RunID is
	// empty a UUID v7 is generated. Returns the ID used.
	CreateRun(run *Run) (string, error)

	// Sink returns a Sink that appends frames to the given run.
	Sink(runID string) (Sink, error)

	// FinishRun marks the run completed, or failed when cause is non-nil.
	FinishRun(runID string, cause error) error

	// GetRun returns the run with the given ID or ErrRunNotFound.
	GetRun(runID string) (*Run, error)

	// ListRuns returns all runs, newest first.
	ListRuns() ([]*Run, error)

	// Frames returns the recorded frames of a run in step order.
	Frames(runID string) ([]Frame, error)

	// DeleteRun removes a run and its frames.
	DeleteRun(runID string) error
}

// Store lifecycle and lookup errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrRunNotFound     = errors.New("run not found")
	ErrInvalidID       = errors.New("invalid run ID")
	ErrInvalidState    = errors.New("invalid run state")
)
