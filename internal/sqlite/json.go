package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// JSONL file names inside DataDir.
const (
	runsJSONL      = "runs.jsonl"
	positionsJSONL = "positions.jsonl"
)

// runJSON is one line of runs.jsonl. Column names match the runs table so
// the loader can insert records without a per-table mapping.
type runJSON struct {
	RunID       string   `json:"run_id"`
	Linkage     string   `json:"linkage"`
	Joints      []string `json:"joints"`
	Steps       int      `json:"steps"`
	State       string   `json:"state"`
	Error       *string  `json:"error"`
	CreatedAt   string   `json:"created_at"`
	CompletedAt *string  `json:"completed_at"`
}

// positionJSON is one line of positions.jsonl: a single joint of a single
// frame. Angle is set for cranks only.
type positionJSON struct {
	RunID   string   `json:"run_id"`
	Step    int      `json:"step"`
	Ordinal int      `json:"ordinal"`
	Joint   string   `json:"joint"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Angle   *float64 `json:"angle,omitempty"`
}

func dehydrateRun(r *types.Run) (json.RawMessage, error) {
	rec := runJSON{
		RunID:     r.RunID,
		Linkage:   r.Linkage,
		Joints:    r.Joints,
		Steps:     r.Steps,
		State:     r.State,
		CreatedAt: formatTime(r.CreatedAt),
	}
	if rec.Joints == nil {
		rec.Joints = []string{}
	}
	if r.Error != "" {
		rec.Error = &r.Error
	}
	if r.CompletedAt != nil {
		s := formatTime(*r.CompletedAt)
		rec.CompletedAt = &s
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal run %s: %w", r.RunID, err)
	}
	return b, nil
}

func dehydratePosition(p positionJSON) (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal position %s/%d/%d: %w", p.RunID, p.Step, p.Ordinal, err)
	}
	return b, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
