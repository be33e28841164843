package linkage

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// intersectCircles returns the intersection points of the circle of radius
// r0 around a and the circle of radius r1 around b. Tangent circles return
// the same point twice. Coincident centers with equal radii have infinitely
// many solutions and are reported as degenerate, as are non-finite inputs.
func intersectCircles(a, b types.Point, r0, r1 float64) (types.Point, types.Point, error) {
	if !a.IsFinite() || !b.IsFinite() {
		return types.Point{}, types.Point{}, fmt.Errorf("%w: anchors %v and %v are not finite", types.ErrDegenerateLinkage, a, b)
	}
	ab := b.Sub(a)
	d := ab.Norm()
	if d == 0 {
		if r0 == r1 {
			return types.Point{}, types.Point{}, fmt.Errorf("%w: coincident anchors at %v with equal distances %g", types.ErrDegenerateLinkage, a, r0)
		}
		return types.Point{}, types.Point{}, fmt.Errorf("%w: coincident anchors at %v with distances %g and %g", types.ErrUnreachableConstraint, a, r0, r1)
	}
	if d > r0+r1 {
		return types.Point{}, types.Point{}, fmt.Errorf("%w: anchors %g apart exceed distances %g + %g", types.ErrUnreachableConstraint, d, r0, r1)
	}
	if d < math.Abs(r0-r1) {
		return types.Point{}, types.Point{}, fmt.Errorf("%w: anchors %g apart are closer than |%g - %g|", types.ErrUnreachableConstraint, d, r0, r1)
	}

	along := (r0*r0 - r1*r1 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r0*r0-along*along))
	u := ab.Scale(1 / d)
	mid := a.Add(u.Scale(along))
	off := u.Perp().Scale(h)
	p, q := mid.Add(off), mid.Sub(off)
	if !p.IsFinite() || !q.IsFinite() {
		return types.Point{}, types.Point{}, fmt.Errorf("%w: intersection of circles around %v and %v overflows", types.ErrDegenerateLinkage, a, b)
	}
	return p, q, nil
}

// nearest picks the candidate closer to ref. Exact ties go to the smaller
// X, then the smaller Y, so the choice never depends on argument order.
func nearest(ref, p, q types.Point) types.Point {
	dp := sqDist(ref, p)
	dq := sqDist(ref, q)
	switch {
	case dp < dq:
		return p
	case dq < dp:
		return q
	case p.X != q.X:
		if p.X < q.X {
			return p
		}
		return q
	case p.Y <= q.Y:
		return p
	default:
		return q
	}
}

func sqDist(a, b types.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
