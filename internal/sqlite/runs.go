package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

const runColumns = "run_id, linkage, joints, steps, state, error, created_at, completed_at"

// CreateRun inserts run in the running state. An empty RunID is replaced by
// a UUID v7 and a zero CreatedAt by the current time; both are written back
// to run.
func (b *Backend) CreateRun(run *types.Run) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if run == nil {
		return "", errors.New("create run: run is nil")
	}
	if run.State == "" {
		run.State = types.RunStateRunning
	}
	if run.State != types.RunStateRunning {
		return "", fmt.Errorf("create run in state %q: %w", run.State, types.ErrInvalidState)
	}
	if run.RunID == "" {
		run.RunID = generateUUID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	joints := run.Joints
	if joints == nil {
		joints = []string{}
	}
	jointsJSON, err := json.Marshal(joints)
	if err != nil {
		return "", fmt.Errorf("marshal joints: %w", err)
	}

	_, err = b.db.Exec(`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, NULL, ?, NULL)`,
		run.RunID, run.Linkage, string(jointsJSON), run.Steps, run.State, formatTime(run.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	return run.RunID, nil
}

// Sink returns a Sink that stores frames under runID. The run must exist
// and be running.
func (b *Backend) Sink(runID string) (types.Sink, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	run, err := b.getRunLocked(runID)
	if err != nil {
		return nil, err
	}
	if run.State != types.RunStateRunning {
		return nil, fmt.Errorf("run %s is %s: %w", runID, run.State, types.ErrInvalidState)
	}
	return &runSink{backend: b, runID: runID, joints: run.Joints}, nil
}

// FinishRun moves the run to completed, or to failed with cause recorded,
// and persists the JSONL files.
func (b *Backend) FinishRun(runID string, cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	run, err := b.getRunLocked(runID)
	if err != nil {
		return err
	}
	if cause != nil {
		err = run.Fail(cause)
	} else {
		err = run.Complete()
	}
	if err != nil {
		return fmt.Errorf("finish run %s (%s): %w", runID, run.State, err)
	}

	var errText sql.NullString
	if run.Error != "" {
		errText = sql.NullString{String: run.Error, Valid: true}
	}
	_, err = b.db.Exec(`UPDATE runs SET state = ?, error = ?, completed_at = ? WHERE run_id = ?`,
		run.State, errText, formatTime(*run.CompletedAt), runID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return b.persistLocked()
}

// GetRun returns the run with the given ID.
func (b *Backend) GetRun(runID string) (*types.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.getRunLocked(runID)
}

// ListRuns returns every run, newest first.
func (b *Backend) ListRuns() ([]*types.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.queryRuns("ORDER BY created_at DESC, run_id DESC")
}

// Frames returns the stored frames of a run in step order.
func (b *Backend) Frames(runID string) ([]types.Frame, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if _, err := b.getRunLocked(runID); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(`SELECT step, joint, x, y, angle FROM positions
		WHERE run_id = ? ORDER BY step, ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames of %s: %w", runID, err)
	}
	defer rows.Close()

	var frames []types.Frame
	for rows.Next() {
		var (
			step  int
			jp    types.JointPosition
			angle sql.NullFloat64
		)
		if err := rows.Scan(&step, &jp.Name, &jp.Point.X, &jp.Point.Y, &angle); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if n := len(frames); n == 0 || frames[n-1].Step != step {
			frames = append(frames, types.Frame{Step: step})
		}
		last := &frames[len(frames)-1]
		last.Joints = append(last.Joints, jp)
		if angle.Valid {
			if last.Angles == nil {
				last.Angles = make(map[string]float64)
			}
			last.Angles[jp.Name] = angle.Float64
		}
	}
	return frames, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its positions.
func (b *Backend) DeleteRun(runID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if runID == "" {
		return types.ErrInvalidID
	}
	res, err := b.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrRunNotFound
	}
	return b.persistLocked()
}

func (b *Backend) getRunLocked(runID string) (*types.Run, error) {
	if runID == "" {
		return nil, types.ErrInvalidID
	}
	row := b.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRunNotFound
	}
	return run, err
}

func (b *Backend) queryRuns(order string) ([]*types.Run, error) {
	rows, err := b.db.Query(`SELECT ` + runColumns + ` FROM runs ` + order)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*types.Run, error) {
	var (
		run         types.Run
		joints      string
		errText     sql.NullString
		createdAt   string
		completedAt sql.NullString
	)
	err := s.Scan(&run.RunID, &run.Linkage, &joints, &run.Steps, &run.State,
		&errText, &createdAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(joints), &run.Joints); err != nil {
		return nil, fmt.Errorf("decode joints of run %s: %w", run.RunID, err)
	}
	run.Error = errText.String
	run.CreatedAt = parseTime(createdAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		run.CompletedAt = &t
	}
	return &run, nil
}

// runSink appends frames of one run. Each frame is written in its own
// transaction together with the run's step count.
type runSink struct {
	backend *Backend
	runID   string
	joints  []string
}

func (s *runSink) Append(frame types.Frame) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if len(s.joints) > 0 && !slices.Equal(s.joints, frame.Names()) {
		return fmt.Errorf("run %s step %d: %w", s.runID, frame.Step, types.ErrFrameMismatch)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE runs SET steps = MAX(steps, ?) WHERE run_id = ? AND state = ?`,
		frame.Step, s.runID, types.RunStateRunning)
	if err != nil {
		return fmt.Errorf("update steps of %s: %w", s.runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var state string
		err := tx.QueryRow(`SELECT state FROM runs WHERE run_id = ?`, s.runID).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrRunNotFound
		}
		if err != nil {
			return fmt.Errorf("read state of %s: %w", s.runID, err)
		}
		return fmt.Errorf("append to run %s (%s): %w", s.runID, state, types.ErrInvalidState)
	}

	stmt, err := tx.Prepare(`INSERT INTO positions (run_id, step, ordinal, joint, x, y, angle) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare position insert: %w", err)
	}
	defer stmt.Close()

	for i, jp := range frame.Joints {
		var angle sql.NullFloat64
		if a, ok := frame.Angles[jp.Name]; ok {
			angle = sql.NullFloat64{Float64: a, Valid: true}
		}
		if _, err := stmt.Exec(s.runID, frame.Step, i, jp.Name, jp.Point.X, jp.Point.Y, angle); err != nil {
			return fmt.Errorf("insert step %d joint %q: %w", frame.Step, jp.Name, err)
		}
	}
	return tx.Commit()
}
