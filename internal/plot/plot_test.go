package plot

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

func circleFrames(n int) []types.Frame {
	frames := make([]types.Frame, n)
	for i := range frames {
		a := 2 * math.Pi * float64(i) / float64(n)
		frames[i] = types.Frame{Step: i + 1, Joints: []types.JointPosition{
			{Name: "B", Point: types.Polar(1, a)},
			{Name: "C", Point: types.Pt(3, 0).Add(types.Polar(2, a/2))},
		}}
	}
	return frames
}

func TestLocusWritesPNG(t *testing.T) {
	w, err := Locus(circleFrames(40), Options{Title: "fourbar", Width: 2 * vg.Inch, Height: 2 * vg.Inch, DPI: 50})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestLocusErrors(t *testing.T) {
	_, err := Locus(nil, Options{})
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = Locus(circleFrames(4), Options{Joints: []string{"Z"}})
	assert.ErrorIs(t, err, types.ErrFrameMismatch)
}

func TestTrace(t *testing.T) {
	frames := circleFrames(20)

	out, err := Trace(frames, "B", AxisY, 5)
	require.NoError(t, err)
	assert.Contains(t, out, "B.y, steps 1-20")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), 6)
}

func TestTraceErrors(t *testing.T) {
	tests := []struct {
		name    string
		frames  []types.Frame
		joint   string
		axis    string
		wantErr error
	}{
		{"no frames", nil, "B", AxisX, ErrNoFrames},
		{"unknown joint", circleFrames(3), "Q", AxisX, types.ErrFrameMismatch},
		{"unknown axis", circleFrames(3), "B", "z", ErrUnknownAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Trace(tt.frames, tt.joint, tt.axis, 0)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
