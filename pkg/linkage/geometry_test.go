package linkage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

func TestIntersectCircles(t *testing.T) {
	tests := []struct {
		name    string
		a, b    types.Point
		r0, r1  float64
		want    [2]types.Point
		wantErr error
	}{
		{
			name: "two symmetric solutions",
			a:    types.Pt(0, 0), b: types.Pt(2, 0),
			r0: math.Sqrt2, r1: math.Sqrt2,
			want: [2]types.Point{types.Pt(1, 1), types.Pt(1, -1)},
		},
		{
			name: "externally tangent",
			a:    types.Pt(0, 0), b: types.Pt(4, 0),
			r0: 3, r1: 1,
			want: [2]types.Point{types.Pt(3, 0), types.Pt(3, 0)},
		},
		{
			name: "internally tangent",
			a:    types.Pt(1, 0), b: types.Pt(3, 0),
			r0: 3, r1: 1,
			want: [2]types.Point{types.Pt(4, 0), types.Pt(4, 0)},
		},
		{
			name: "too far apart",
			a:    types.Pt(0, 0), b: types.Pt(5, 0),
			r0: 1, r1: 1,
			wantErr: types.ErrUnreachableConstraint,
		},
		{
			name: "one inside the other",
			a:    types.Pt(0, 0), b: types.Pt(0.5, 0),
			r0: 3, r1: 1,
			wantErr: types.ErrUnreachableConstraint,
		},
		{
			name: "coincident anchors unequal radii",
			a:    types.Pt(1, 1), b: types.Pt(1, 1),
			r0: 1, r1: 2,
			wantErr: types.ErrUnreachableConstraint,
		},
		{
			name: "coincident anchors equal radii",
			a:    types.Pt(1, 1), b: types.Pt(1, 1),
			r0: 1, r1: 1,
			wantErr: types.ErrDegenerateLinkage,
		},
		{
			name: "NaN anchor",
			a:    types.Pt(math.NaN(), 0), b: types.Pt(1, 0),
			r0: 1, r1: 1,
			wantErr: types.ErrDegenerateLinkage,
		},
		{
			name: "infinite anchor",
			a:    types.Pt(0, 0), b: types.Pt(0, math.Inf(1)),
			r0: 1, r1: 1,
			wantErr: types.ErrDegenerateLinkage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q, err := intersectCircles(tt.a, tt.b, tt.r0, tt.r1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want[0].X, p.X, 1e-12)
			assert.InDelta(t, tt.want[0].Y, p.Y, 1e-12)
			assert.InDelta(t, tt.want[1].X, q.X, 1e-12)
			assert.InDelta(t, tt.want[1].Y, q.Y, 1e-12)
			for _, c := range []types.Point{p, q} {
				assert.InDelta(t, tt.r0, c.Dist(tt.a), 1e-9)
				assert.InDelta(t, tt.r1, c.Dist(tt.b), 1e-9)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		name string
		ref  types.Point
		p, q types.Point
		want types.Point
	}{
		{name: "first closer", ref: types.Pt(0, 1), p: types.Pt(0, 2), q: types.Pt(0, -2), want: types.Pt(0, 2)},
		{name: "second closer", ref: types.Pt(0, -1), p: types.Pt(0, 2), q: types.Pt(0, -2), want: types.Pt(0, -2)},
		{name: "tie breaks on smaller x", ref: types.Pt(0, 0), p: types.Pt(1, 0), q: types.Pt(-1, 0), want: types.Pt(-1, 0)},
		{name: "tie breaks on smaller y", ref: types.Pt(1, 0), p: types.Pt(1, 1), q: types.Pt(1, -1), want: types.Pt(1, -1)},
		{name: "identical candidates", ref: types.Pt(5, 5), p: types.Pt(3, 0), q: types.Pt(3, 0), want: types.Pt(3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nearest(tt.ref, tt.p, tt.q))
			assert.Equal(t, tt.want, nearest(tt.ref, tt.q, tt.p), "choice must not depend on argument order")
		})
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{2*math.Pi + 0.5, 0.5},
		{-0.5, 2*math.Pi - 0.5},
		{-4 * math.Pi, 0},
	}
	for _, tt := range tests {
		got := wrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "wrapAngle(%g)", tt.in)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 2*math.Pi)
	}
}
