package types

import "time"

// Run states.
const (
	RunStateRunning   = "running"
	RunStateCompleted = "completed"
	RunStateFailed    = "failed"
)

// Run describes one recorded simulation of a linkage. Frames are stored
// separately and fetched with Store.Frames. Entity methods modify the struct
// in memory; Store.FinishRun applies the same transition to the stored run.
type Run struct {
	RunID       string     `json:"run_id"`
	Linkage     string     `json:"linkage"`
	Joints      []string   `json:"joints"`
	Steps       int        `json:"steps"`
	State       string     `json:"state"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Complete marks the run as finished. The current state must be "running";
// otherwise ErrInvalidState is returned.
func (r *Run) Complete() error {
	if r.State != RunStateRunning {
		return ErrInvalidState
	}
	now := time.Now()
	r.State = RunStateCompleted
	r.CompletedAt = &now
	return nil
}

// Fail marks the run as failed and records the cause. The current state
// must be "running"; otherwise ErrInvalidState is returned.
func (r *Run) Fail(cause error) error {
	if r.State != RunStateRunning {
		return ErrInvalidState
	}
	now := time.Now()
	r.State = RunStateFailed
	if cause != nil {
		r.Error = cause.Error()
	}
	r.CompletedAt = &now
	return nil
}
