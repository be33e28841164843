package linkage

import "github.com/mesh-intelligence/linkage/pkg/types"

// Ref is a non-owning reference from a joint to one of its inputs: either
// another joint of the same linkage or a literal anchor point.
type Ref struct {
	joint  Joint
	at     types.Point
	handle int // index into the owning linkage's arena, set by New
}

// On references another joint. The joint must precede the referencing
// joint in the linkage's solve order.
func On(j Joint) Ref {
	return Ref{joint: j, handle: -1}
}

// At references a literal anchor point.
func At(p types.Point) Ref {
	return Ref{at: p, handle: -1}
}

// Joint returns the referenced joint, or nil for a literal point.
func (r Ref) Joint() Joint {
	return r.joint
}

// IsPoint reports whether r is a literal anchor point.
func (r Ref) IsPoint() bool {
	return r.joint == nil
}

// initial returns the position the reference has before any step, used
// when deriving crank phases from construction input.
func (r Ref) initial() types.Point {
	if r.joint == nil {
		return r.at
	}
	return r.joint.Position()
}

// String names the referenced joint or formats the literal point.
func (r Ref) String() string {
	if r.joint == nil {
		return r.at.String()
	}
	return r.joint.Name()
}

// Context gives a joint read access to the positions of its references
// during a step. References to joints resolve to the value already
// computed for the current step.
type Context interface {
	Resolve(r Ref) types.Point
}
