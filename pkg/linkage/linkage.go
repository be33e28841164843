package linkage

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Linkage owns an ordered set of joints and advances them together. The
// order is the solve order: every joint referenced by a joint appears
// before it. A joint belongs to exactly one Linkage.
type Linkage struct {
	name   string
	joints []Joint
	index  map[string]int
	steps  int
	saved  []state
}

// New builds a linkage from joints in solve order. It validates each
// joint's parameters and literal anchors (ErrDegenerateLinkage), rejects
// repeated joints or names and joints that already belong to another
// linkage (ErrDuplicateJoint) and checks that every referenced joint
// appears earlier in the order (ErrMissingDependency). Unnamed joints are
// named j<index>.
//
// The joints are bound to the linkage only when every check passes; a
// failed New leaves them untouched.
func New(name string, joints ...Joint) (*Linkage, error) {
	if len(joints) == 0 {
		return nil, fmt.Errorf("%w: linkage %q has no joints", types.ErrInvalidSpec, name)
	}

	handles := make(map[Joint]int, len(joints))
	names := make([]string, len(joints))
	index := make(map[string]int, len(joints))

	for i, j := range joints {
		if j == nil {
			return nil, fmt.Errorf("%w: joint %d is nil", types.ErrInvalidSpec, i)
		}
		if _, ok := handles[j]; ok {
			return nil, fmt.Errorf("%w: joint %q listed twice", types.ErrDuplicateJoint, j.Name())
		}
		if owner := j.owner(); owner != nil {
			return nil, fmt.Errorf("%w: joint %q already belongs to linkage %q", types.ErrDuplicateJoint, j.Name(), owner.name)
		}
		names[i] = j.Name()
		if names[i] == "" {
			names[i] = fmt.Sprintf("j%d", i)
		}
		if _, ok := index[names[i]]; ok {
			return nil, fmt.Errorf("%w: name %q", types.ErrDuplicateJoint, names[i])
		}
		if err := j.validate(); err != nil {
			return nil, err
		}
		for _, r := range j.refs() {
			if r.joint == nil {
				if !r.at.IsFinite() {
					return nil, fmt.Errorf("%w: joint %q anchor %v is not finite", types.ErrDegenerateLinkage, names[i], r.at)
				}
				continue
			}
			if _, ok := handles[r.joint]; !ok {
				return nil, fmt.Errorf("%w: joint %q references %q, which is not earlier in the solve order",
					types.ErrMissingDependency, names[i], r.joint.Name())
			}
		}
		handles[j] = i
		index[names[i]] = i
	}

	l := &Linkage{
		name:   name,
		joints: slices.Clone(joints),
		index:  index,
		saved:  make([]state, len(joints)),
	}
	for i, j := range l.joints {
		j.bind(l, names[i])
		for _, r := range j.refs() {
			r.handle = -1
			if r.joint != nil {
				r.handle = handles[r.joint]
			}
		}
	}
	return l, nil
}

// Name returns the linkage name.
func (l *Linkage) Name() string {
	return l.name
}

// Joints returns the joints in solve order.
func (l *Linkage) Joints() []Joint {
	out := make([]Joint, len(l.joints))
	copy(out, l.joints)
	return out
}

// Joint returns the joint with the given name.
func (l *Linkage) Joint(name string) (Joint, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.joints[i], true
}

// StepCount returns the number of successfully committed steps.
func (l *Linkage) StepCount() int {
	return l.steps
}

// Resolve implements Context. A joint reference resolves to the joint's
// current position, which for joints earlier in the order is already this
// step's value.
func (l *Linkage) Resolve(r Ref) types.Point {
	if r.joint == nil {
		return r.at
	}
	if r.handle >= 0 && r.handle < len(l.joints) && l.joints[r.handle] == r.joint {
		return l.joints[r.handle].Position()
	}
	return r.joint.Position()
}

// Positions returns the current snapshot without advancing.
func (l *Linkage) Positions() types.Frame {
	f := types.Frame{
		Step:   l.steps,
		Joints: make([]types.JointPosition, len(l.joints)),
	}
	for i, j := range l.joints {
		f.Joints[i] = types.JointPosition{Name: j.Name(), Point: j.Position()}
		if c, ok := j.(*Crank); ok {
			if f.Angles == nil {
				f.Angles = make(map[string]float64)
			}
			f.Angles[c.Name()] = c.Angle()
		}
	}
	return f
}

// Step solves every joint once, in order, and returns the new frame. If a
// joint fails, every joint is restored to its state before the step, the
// step counter is left unchanged and a *types.StepError naming the joint
// and the attempted step is returned.
func (l *Linkage) Step() (types.Frame, error) {
	for i, j := range l.joints {
		l.saved[i] = j.save()
	}
	for _, j := range l.joints {
		if _, err := j.Solve(l); err != nil {
			for i, j := range l.joints {
				j.restore(l.saved[i])
			}
			return types.Frame{}, &types.StepError{
				Linkage: l.name,
				Joint:   j.Name(),
				Step:    l.steps + 1,
				Err:     err,
			}
		}
	}
	l.steps++
	return l.Positions(), nil
}

// Run returns a sequence that performs up to n steps lazily, yielding each
// frame. It stops after yielding the first error. The sequence advances the
// linkage, so ranging over it twice continues the motion; rebuild the
// linkage to replay from the start.
func (l *Linkage) Run(n int) iter.Seq2[types.Frame, error] {
	return func(yield func(types.Frame, error) bool) {
		for range n {
			f, err := l.Step()
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Record performs n steps and appends every frame to sink. It checks ctx
// between steps; a step in progress is never interrupted.
//
// A step is committed before its frame reaches the sink. If Append fails
// the linkage stays advanced and Record returns a *types.SinkError carrying
// the frame, so the caller can retry or store it elsewhere.
func (l *Linkage) Record(ctx context.Context, n int, sink types.Sink) error {
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := l.Step()
		if err != nil {
			return err
		}
		if err := sink.Append(f); err != nil {
			return &types.SinkError{Frame: f, Err: err}
		}
	}
	return nil
}
