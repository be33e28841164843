package linkage

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Rigid is attached to the segment from an origin joint to a reference
// joint: it stays at a fixed distance from the origin and at a fixed angle
// from the origin-to-reference direction, like a point on a coupler plate.
type Rigid struct {
	base
	origin    Ref
	reference Ref
	distance  float64
	angle     float64
}

// NewRigid returns a joint at distance from origin, rotated by angle
// radians from the direction origin→reference.
func NewRigid(name string, origin, reference Ref, distance, angle float64) *Rigid {
	r := &Rigid{
		base:      base{name: name},
		origin:    origin,
		reference: reference,
		distance:  distance,
		angle:     angle,
	}
	o, ref := origin.initial(), reference.initial()
	if o != ref {
		r.pos = o.Add(types.Polar(distance, ref.Sub(o).Angle()+angle))
	}
	return r
}

// Solve places the joint relative to the current origin and reference.
func (r *Rigid) Solve(ctx Context) (types.Point, error) {
	o := ctx.Resolve(r.origin)
	ref := ctx.Resolve(r.reference)
	if o == ref {
		return types.Point{}, fmt.Errorf("%w: rigid %q origin and reference coincide at %v", types.ErrDegenerateLinkage, r.name, o)
	}
	pos := o.Add(types.Polar(r.distance, ref.Sub(o).Angle()+r.angle))
	if !pos.IsFinite() {
		return types.Point{}, fmt.Errorf("%w: rigid %q position %v is not finite", types.ErrDegenerateLinkage, r.name, pos)
	}
	r.pos = pos
	return r.pos, nil
}

func (r *Rigid) refs() []*Ref { return []*Ref{&r.origin, &r.reference} }

func (r *Rigid) validate() error {
	if !(r.distance > 0) || math.IsInf(r.distance, 0) {
		return fmt.Errorf("%w: rigid %q distance %g must be positive", types.ErrDegenerateLinkage, r.name, r.distance)
	}
	if math.IsNaN(r.angle) || math.IsInf(r.angle, 0) {
		return fmt.Errorf("%w: rigid %q angle %g is not finite", types.ErrDegenerateLinkage, r.name, r.angle)
	}
	return nil
}

func (r *Rigid) save() state { return state{pos: r.pos} }

func (r *Rigid) restore(s state) { r.pos = s.pos }
