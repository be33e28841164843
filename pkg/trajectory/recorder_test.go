package trajectory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/linkage/pkg/linkage"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

func frame(step int, pts ...types.JointPosition) types.Frame {
	return types.Frame{Step: step, Joints: pts}
}

func jp(name string, x, y float64) types.JointPosition {
	return types.JointPosition{Name: name, Point: types.Pt(x, y)}
}

func TestRecorderRecordsLinkage(t *testing.T) {
	crank := linkage.NewCrank("B", linkage.At(types.Pt(0, 0)), 1, 0.31)
	crank.SetAngle(math.Pi / 2)
	pin := linkage.NewPivot("C", linkage.On(crank), linkage.At(types.Pt(3, 0)), 3, 1)
	pin.Seed(types.Pt(3, 2))
	l, err := linkage.New("four-bar", crank, pin)
	require.NoError(t, err)

	rec := NewRecorder()
	require.NoError(t, l.Record(context.Background(), 200, rec))

	assert.Equal(t, 200, rec.Len())
	assert.Equal(t, []string{"B", "C"}, rec.Names())

	frames := rec.Frames()
	for i, f := range frames {
		assert.Equal(t, i+1, f.Step)
	}

	locus, err := rec.Locus("B")
	require.NoError(t, err)
	require.Len(t, locus, 200)
	for _, p := range locus {
		assert.InDelta(t, 1.0, p.Norm(), 1e-9)
	}

	lo, hi, ok := rec.Bounds()
	require.True(t, ok)
	assert.GreaterOrEqual(t, lo.X, -1.0-1e-9)
	assert.LessOrEqual(t, hi.X, 4.0+1e-9)
}

func TestRecorderRejectsMismatchedFrames(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.Append(frame(1, jp("A", 0, 0), jp("B", 1, 0))))

	err := rec.Append(frame(2, jp("A", 0, 0)))
	assert.ErrorIs(t, err, types.ErrFrameMismatch)

	err = rec.Append(frame(2, jp("B", 0, 0), jp("A", 1, 0)))
	assert.ErrorIs(t, err, types.ErrFrameMismatch)
	assert.Equal(t, 1, rec.Len())
}

func TestRecorderStoresCopies(t *testing.T) {
	rec := NewRecorder()
	f := frame(1, jp("A", 1, 1))
	require.NoError(t, rec.Append(f))

	f.Joints[0].Point = types.Pt(5, 5)
	got := rec.Frames()
	assert.Equal(t, types.Pt(1, 1), got[0].Joints[0].Point)

	got[0].Joints[0].Point = types.Pt(7, 7)
	assert.Equal(t, types.Pt(1, 1), rec.Frames()[0].Joints[0].Point)
}

func TestLocusMissingJoint(t *testing.T) {
	_, err := Locus([]types.Frame{frame(1, jp("A", 0, 0))}, "Z")
	assert.ErrorIs(t, err, types.ErrFrameMismatch)
}

func TestBounds(t *testing.T) {
	_, _, ok := Bounds(nil)
	assert.False(t, ok)

	lo, hi, ok := Bounds([]types.Frame{
		frame(1, jp("A", -1, 2), jp("B", 3, -4)),
		frame(2, jp("A", 0, 5), jp("B", 1, 1)),
	})
	require.True(t, ok)
	assert.Equal(t, types.Pt(-1, -4), lo)
	assert.Equal(t, types.Pt(3, 5), hi)
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	sink := Multi(a, nil, b)

	require.NoError(t, sink.Append(frame(1, jp("A", 0, 0))))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())

	boom := errors.New("boom")
	c := NewRecorder()
	sink = Multi(types.SinkFunc(func(types.Frame) error { return boom }), c)
	assert.ErrorIs(t, sink.Append(frame(1)), boom)
	assert.Equal(t, 0, c.Len(), "later sinks are skipped after an error")
}
