package linkage

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Pivot is held at fixed distances from two anchors. Of the two points that
// satisfy both distances it keeps the one nearest to where it was on the
// previous step, so it stays on one branch of its constraint curve.
type Pivot struct {
	base
	anchor0   Ref
	anchor1   Ref
	distance0 float64
	distance1 float64
	seeded    bool
}

// NewPivot returns a pivot at distance d0 from anchor0 and d1 from
// anchor1. Call Seed before the first step.
func NewPivot(name string, anchor0, anchor1 Ref, d0, d1 float64) *Pivot {
	return &Pivot{
		base:      base{name: name},
		anchor0:   anchor0,
		anchor1:   anchor1,
		distance0: d0,
		distance1: d1,
	}
}

// Seed sets the initial position used to choose a branch on the first
// step. It need not satisfy the constraints exactly.
func (p *Pivot) Seed(at types.Point) {
	p.pos = at
	p.seeded = true
}

// Seeded reports whether the pivot has a previous position.
func (p *Pivot) Seeded() bool {
	return p.seeded
}

// Anchors returns the two anchor references.
func (p *Pivot) Anchors() (Ref, Ref) {
	return p.anchor0, p.anchor1
}

// Distances returns the distances to anchor0 and anchor1.
func (p *Pivot) Distances() (float64, float64) {
	return p.distance0, p.distance1
}

// Solve intersects the two constraint circles around the anchors' current
// positions and moves to the intersection nearest the previous position.
func (p *Pivot) Solve(ctx Context) (types.Point, error) {
	if !p.seeded {
		return types.Point{}, fmt.Errorf("%w: pivot %q", types.ErrUnseededPivot, p.name)
	}
	a := ctx.Resolve(p.anchor0)
	b := ctx.Resolve(p.anchor1)
	c0, c1, err := intersectCircles(a, b, p.distance0, p.distance1)
	if err != nil {
		return types.Point{}, err
	}
	p.pos = nearest(p.pos, c0, c1)
	return p.pos, nil
}

func (p *Pivot) refs() []*Ref { return []*Ref{&p.anchor0, &p.anchor1} }

func (p *Pivot) validate() error {
	for i, d := range []float64{p.distance0, p.distance1} {
		if !(d > 0) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: pivot %q distance%d %g must be positive", types.ErrDegenerateLinkage, p.name, i, d)
		}
	}
	if p.seeded && !p.pos.IsFinite() {
		return fmt.Errorf("%w: pivot %q seed %v is not finite", types.ErrDegenerateLinkage, p.name, p.pos)
	}
	return nil
}

func (p *Pivot) save() state { return state{pos: p.pos, seeded: p.seeded} }

func (p *Pivot) restore(s state) {
	p.pos = s.pos
	p.seeded = s.seeded
}
