package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

func frame(step int, b, c types.Point) types.Frame {
	return types.Frame{Step: step, Joints: []types.JointPosition{
		{Name: "B", Point: b},
		{Name: "C", Point: c},
	}}
}

func record(t *testing.T, b *Backend, run *types.Run, frames ...types.Frame) string {
	t.Helper()
	id, err := b.CreateRun(run)
	require.NoError(t, err)
	sink, err := b.Sink(id)
	require.NoError(t, err)
	for _, f := range frames {
		require.NoError(t, sink.Append(f))
	}
	return id
}

func TestCreateRunDefaults(t *testing.T) {
	b := attach(t, t.TempDir())

	run := &types.Run{Linkage: "fourbar", Joints: []string{"B", "C"}}
	id, err := b.CreateRun(run)
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, id, run.RunID)
	assert.Equal(t, types.RunStateRunning, run.State)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := b.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "fourbar", got.Linkage)
	assert.Equal(t, []string{"B", "C"}, got.Joints)
	assert.Equal(t, types.RunStateRunning, got.State)
	assert.Nil(t, got.CompletedAt)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestCreateRunErrors(t *testing.T) {
	b := attach(t, t.TempDir())

	_, err := b.CreateRun(nil)
	assert.Error(t, err)

	_, err = b.CreateRun(&types.Run{State: types.RunStateCompleted})
	assert.ErrorIs(t, err, types.ErrInvalidState)

	_, err = b.CreateRun(&types.Run{RunID: "dup"})
	require.NoError(t, err)
	_, err = b.CreateRun(&types.Run{RunID: "dup"})
	assert.Error(t, err)
}

func TestGetRunErrors(t *testing.T) {
	b := attach(t, t.TempDir())

	_, err := b.GetRun("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = b.GetRun("nope")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
	_, err = b.Frames("nope")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
	_, err = b.Sink("nope")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
	assert.ErrorIs(t, b.FinishRun("nope", nil), types.ErrRunNotFound)
	assert.ErrorIs(t, b.DeleteRun("nope"), types.ErrRunNotFound)
	assert.ErrorIs(t, b.DeleteRun(""), types.ErrInvalidID)
}

func TestListRunsNewestFirst(t *testing.T) {
	b := attach(t, t.TempDir())
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		_, err := b.CreateRun(&types.Run{Linkage: name, CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	runs, err := b.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Linkage)
	assert.Equal(t, "second", runs[1].Linkage)
	assert.Equal(t, "first", runs[2].Linkage)
}

func TestSinkAndFrames(t *testing.T) {
	b := attach(t, t.TempDir())
	want := []types.Frame{
		frame(1, types.Pt(0.5, 0.25), types.Pt(3, 2)),
		frame(2, types.Pt(-1, 0), types.Pt(2.5, 1.5)),
		frame(3, types.Pt(0, -1), types.Pt(2, 0.75)),
	}
	id := record(t, b, &types.Run{Linkage: "fourbar", Joints: []string{"B", "C"}}, want...)

	got, err := b.Frames(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	run, err := b.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Steps)
}

func TestSinkRejections(t *testing.T) {
	b := attach(t, t.TempDir())
	id := record(t, b, &types.Run{Joints: []string{"B", "C"}},
		frame(1, types.Pt(0, 0), types.Pt(1, 1)))
	sink, err := b.Sink(id)
	require.NoError(t, err)

	t.Run("joint mismatch", func(t *testing.T) {
		err := sink.Append(types.Frame{Step: 2, Joints: []types.JointPosition{{Name: "X"}}})
		assert.ErrorIs(t, err, types.ErrFrameMismatch)
	})

	t.Run("duplicate step", func(t *testing.T) {
		err := sink.Append(frame(1, types.Pt(9, 9), types.Pt(9, 9)))
		require.Error(t, err)
		frames, err := b.Frames(id)
		require.NoError(t, err)
		require.Len(t, frames, 1)
		assert.Equal(t, types.Pt(0, 0), frames[0].Joints[0].Point)
	})

	t.Run("finished run", func(t *testing.T) {
		require.NoError(t, b.FinishRun(id, nil))
		err := sink.Append(frame(2, types.Pt(0, 0), types.Pt(1, 1)))
		assert.ErrorIs(t, err, types.ErrInvalidState)
		_, err = b.Sink(id)
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("deleted run", func(t *testing.T) {
		other := record(t, b, &types.Run{})
		s, err := b.Sink(other)
		require.NoError(t, err)
		require.NoError(t, b.DeleteRun(other))
		assert.ErrorIs(t, s.Append(frame(1, types.Pt(0, 0), types.Pt(1, 1))), types.ErrRunNotFound)
	})
}

func TestFinishRun(t *testing.T) {
	b := attach(t, t.TempDir())

	ok := record(t, b, &types.Run{Linkage: "ok"})
	require.NoError(t, b.FinishRun(ok, nil))
	run, err := b.GetRun(ok)
	require.NoError(t, err)
	assert.Equal(t, types.RunStateCompleted, run.State)
	assert.Empty(t, run.Error)
	require.NotNil(t, run.CompletedAt)

	bad := record(t, b, &types.Run{Linkage: "bad"})
	cause := fmt.Errorf("step 7: %w", types.ErrUnreachableConstraint)
	require.NoError(t, b.FinishRun(bad, cause))
	run, err = b.GetRun(bad)
	require.NoError(t, err)
	assert.Equal(t, types.RunStateFailed, run.State)
	assert.Equal(t, cause.Error(), run.Error)

	assert.ErrorIs(t, b.FinishRun(ok, nil), types.ErrInvalidState)
	assert.ErrorIs(t, b.FinishRun(bad, errors.New("again")), types.ErrInvalidState)
}

func TestDeleteRunCascades(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir)

	keep := record(t, b, &types.Run{Linkage: "keep"}, frame(1, types.Pt(1, 1), types.Pt(2, 2)))
	drop := record(t, b, &types.Run{Linkage: "drop"}, frame(1, types.Pt(3, 3), types.Pt(4, 4)))

	require.NoError(t, b.DeleteRun(drop))
	_, err := b.GetRun(drop)
	assert.ErrorIs(t, err, types.ErrRunNotFound)

	var n int
	require.NoError(t, b.db.QueryRow(`SELECT COUNT(*) FROM positions WHERE run_id = ?`, drop).Scan(&n))
	assert.Zero(t, n)

	data, err := os.ReadFile(filepath.Join(dir, positionsJSONL))
	require.NoError(t, err)
	assert.Contains(t, string(data), keep)
	assert.NotContains(t, string(data), drop)
}

func TestRoundTripAcrossAttach(t *testing.T) {
	dir := t.TempDir()
	frames := []types.Frame{
		frame(1, types.Pt(0.1, 0.2), types.Pt(3, 1.5)),
		frame(2, types.Pt(0.3, 0.4), types.Pt(2.9, 1.25)),
	}
	frames[0].Angles = map[string]float64{"B": 1.1}
	frames[1].Angles = map[string]float64{"B": 1.4}

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	done := record(t, b, &types.Run{Linkage: "done", Joints: []string{"B", "C"}}, frames...)
	require.NoError(t, b.FinishRun(done, nil))
	open := record(t, b, &types.Run{Linkage: "open", Joints: []string{"B", "C"}}, frames[0])
	require.NoError(t, b.Detach())

	data, err := os.ReadFile(filepath.Join(dir, positionsJSONL))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"joint":"B","x":0.1,"y":0.2,"angle":1.1`)
	assert.NotContains(t, string(data), `"joint":"C","x":3,"y":1.5,"angle"`, "only cranks carry an angle")

	b2 := attach(t, dir)
	run, err := b2.GetRun(done)
	require.NoError(t, err)
	assert.Equal(t, types.RunStateCompleted, run.State)
	assert.Equal(t, []string{"B", "C"}, run.Joints)
	assert.Equal(t, 2, run.Steps)
	require.NotNil(t, run.CompletedAt)

	got, err := b2.Frames(done)
	require.NoError(t, err)
	assert.Equal(t, frames, got)

	got, err = b2.Frames(open)
	require.NoError(t, err)
	assert.Equal(t, frames[:1], got)
}

func TestLoadSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	runs := strings.Join([]string{
		`{"run_id":"r1","linkage":"fourbar","joints":["B"],"steps":1,"state":"completed","error":null,"created_at":"2025-01-15T10:30:00.000000000Z","completed_at":"2025-01-15T10:31:00.000000000Z","solver":"v2"}`,
		`not json`,
		`{"run_id":"r2","state":"running"}`,
		``,
	}, "\n")
	positions := strings.Join([]string{
		`{"run_id":"r1","step":1,"ordinal":0,"joint":"B","x":1.5,"y":-2}`,
		`{"run_id":"ghost","step":1,"ordinal":0,"joint":"B","x":0,"y":0}`,
		`{"run_id":"r1","step":1`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, runsJSONL), []byte(runs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, positionsJSONL), []byte(positions), 0o644))

	b := attach(t, dir)

	all, err := b.ListRuns()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].RunID)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), all[0].CreatedAt)

	frames, err := b.Frames("r1")
	require.NoError(t, err)
	assert.Equal(t, []types.Frame{{Step: 1, Joints: []types.JointPosition{{Name: "B", Point: types.Pt(1.5, -2)}}}}, frames)

	var n int
	require.NoError(t, b.db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n))
	assert.Equal(t, 1, n)
}
