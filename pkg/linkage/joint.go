package linkage

import "github.com/mesh-intelligence/linkage/pkg/types"

// Joint is a point of the mechanism with a rule for computing its own
// position each step. The set of implementations is closed: Fixed, Crank,
// Pivot and Rigid.
type Joint interface {
	// Name identifies the joint in frames and errors.
	Name() string

	// Position returns the joint's current coordinates.
	Position() types.Point

	// Solve computes and stores the joint's position for the current step
	// from the positions of its references.
	Solve(c Context) (types.Point, error)

	// refs returns pointers to the joint's references so New can
	// validate and bind them.
	refs() []*Ref

	// validate checks structural parameters.
	validate() error

	// save and restore capture all latent state so a failed step can be
	// rolled back.
	save() state
	restore(state)

	// owner returns the linkage the joint was bound to, or nil.
	owner() *Linkage

	// bind attaches the joint to l under name. New calls it only once
	// the whole joint list has been validated.
	bind(l *Linkage, name string)
}

// state is the latent memory of a joint between steps.
type state struct {
	pos    types.Point
	angle  float64
	seeded bool
}

// base carries the fields shared by every joint kind.
type base struct {
	name    string
	pos     types.Point
	linkage *Linkage
}

// Name returns the joint name.
func (b *base) Name() string {
	return b.name
}

// Position returns the joint's current coordinates.
func (b *base) Position() types.Point {
	return b.pos
}

func (b *base) owner() *Linkage {
	return b.linkage
}

func (b *base) bind(l *Linkage, name string) {
	b.linkage = l
	b.name = name
}
