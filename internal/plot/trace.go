package plot

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Axes accepted by Trace.
const (
	AxisX = "x"
	AxisY = "y"
)

// ErrUnknownAxis is returned by Trace for an axis other than x or y.
var ErrUnknownAxis = errors.New("unknown axis")

// Trace charts one coordinate of a joint over the recorded steps as text.
// A height of zero lets the chart size itself.
func Trace(frames []types.Frame, joint, axis string, height int) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrames
	}
	pts, err := trajectory.Locus(frames, joint)
	if err != nil {
		return "", err
	}

	data := make([]float64, len(pts))
	for i, p := range pts {
		switch axis {
		case AxisX:
			data[i] = p.X
		case AxisY:
			data[i] = p.Y
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownAxis, axis)
		}
	}

	opts := []asciigraph.Option{
		asciigraph.Caption(fmt.Sprintf("%s.%s, steps %d-%d", joint, axis, frames[0].Step, frames[len(frames)-1].Step)),
	}
	if height > 0 {
		opts = append(opts, asciigraph.Height(height))
	}
	return asciigraph.Plot(data, opts...), nil
}
