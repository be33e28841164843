package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameLookup(t *testing.T) {
	f := Frame{Step: 3, Joints: []JointPosition{
		{Name: "A", Point: Pt(0, 0)},
		{Name: "B", Point: Pt(1, 2)},
	}}

	p, ok := f.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, Pt(1, 2), p)

	_, ok = f.Lookup("Z")
	assert.False(t, ok)

	assert.Equal(t, []string{"A", "B"}, f.Names())
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := Frame{
		Step:   1,
		Joints: []JointPosition{{Name: "A", Point: Pt(1, 1)}},
		Angles: map[string]float64{"A": 0.5},
	}
	c := f.Clone()
	c.Joints[0].Point = Pt(9, 9)
	c.Angles["A"] = 2

	assert.Equal(t, Pt(1, 1), f.Joints[0].Point)
	assert.Equal(t, 0.5, f.Angles["A"])
	assert.Equal(t, 1, c.Step)

	assert.Nil(t, Frame{Step: 2}.Clone().Angles)
}

func TestFrameAngleNames(t *testing.T) {
	f := Frame{
		Joints: []JointPosition{{Name: "C"}, {Name: "B"}, {Name: "A"}},
		Angles: map[string]float64{"A": 0.1, "C": 0.2},
	}
	assert.Equal(t, []string{"C", "A"}, f.AngleNames())
	assert.Empty(t, Frame{Joints: f.Joints}.AngleNames())
}

func TestSinkFunc(t *testing.T) {
	var got []int
	var s Sink = SinkFunc(func(f Frame) error {
		got = append(got, f.Step)
		return nil
	})

	assert.NoError(t, s.Append(Frame{Step: 1}))
	assert.NoError(t, s.Append(Frame{Step: 2}))
	assert.Equal(t, []int{1, 2}, got)
}
