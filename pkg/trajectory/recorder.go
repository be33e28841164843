package trajectory

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Recorder is an in-memory types.Sink. It keeps frames in arrival order
// and requires every frame to carry the same joints as the first one.
type Recorder struct {
	mu     sync.RWMutex
	names  []string
	frames []types.Frame
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append stores a copy of the frame. Returns ErrFrameMismatch when the
// frame's joints differ from those of the first frame.
func (r *Recorder) Append(f types.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := f.Names()
	if r.names == nil {
		r.names = names
	} else if !slices.Equal(r.names, names) {
		return fmt.Errorf("%w: step %d has joints %v, want %v", types.ErrFrameMismatch, f.Step, names, r.names)
	}
	r.frames = append(r.frames, f.Clone())
	return nil
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Names returns the joint names in frame order.
func (r *Recorder) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []types.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Frame, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Clone()
	}
	return out
}

// Locus returns the path traced by one joint.
func (r *Recorder) Locus(name string) ([]types.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Locus(r.frames, name)
}

// Bounds returns the bounding box of every recorded position.
func (r *Recorder) Bounds() (lo, hi types.Point, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Bounds(r.frames)
}

// Locus returns the positions of the named joint across frames. Returns
// ErrFrameMismatch if a frame lacks the joint.
func Locus(frames []types.Frame, name string) ([]types.Point, error) {
	out := make([]types.Point, 0, len(frames))
	for _, f := range frames {
		p, ok := f.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: joint %q missing at step %d", types.ErrFrameMismatch, name, f.Step)
		}
		out = append(out, p)
	}
	return out, nil
}

// Bounds returns the smallest box containing every position in frames.
// ok is false when there are no positions.
func Bounds(frames []types.Frame) (lo, hi types.Point, ok bool) {
	lo = types.Pt(math.Inf(1), math.Inf(1))
	hi = types.Pt(math.Inf(-1), math.Inf(-1))
	for _, f := range frames {
		for _, jp := range f.Joints {
			lo.X = math.Min(lo.X, jp.Point.X)
			lo.Y = math.Min(lo.Y, jp.Point.Y)
			hi.X = math.Max(hi.X, jp.Point.X)
			hi.Y = math.Max(hi.Y, jp.Point.Y)
			ok = true
		}
	}
	if !ok {
		return types.Point{}, types.Point{}, false
	}
	return lo, hi, true
}
