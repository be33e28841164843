package linkage

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

const twoPi = 2 * math.Pi

// Crank is driven by rotating an arm of fixed length around a center by a
// constant angular step each tick.
type Crank struct {
	base
	center Ref
	arm    float64
	step   float64
	angle  float64
}

// NewCrank returns a crank rotating around center with the given arm
// length and angular step in radians per tick. The initial angle is 0; use
// SetAngle to start elsewhere.
func NewCrank(name string, center Ref, arm, step float64) *Crank {
	c := &Crank{
		base:   base{name: name},
		center: center,
		arm:    arm,
		step:   step,
	}
	c.SetAngle(0)
	return c
}

// SetAngle sets the current arm angle and places the crank accordingly
// relative to the center's current position.
func (c *Crank) SetAngle(theta float64) {
	c.angle = wrapAngle(theta)
	c.pos = c.center.initial().Add(types.Polar(c.arm, c.angle))
}

// Angle returns the current arm angle in [0, 2π).
func (c *Crank) Angle() float64 {
	return c.angle
}

// Arm returns the arm length.
func (c *Crank) Arm() float64 {
	return c.arm
}

// Step returns the angular step per tick.
func (c *Crank) Step() float64 {
	return c.step
}

// Center returns the rotation center reference.
func (c *Crank) Center() Ref {
	return c.center
}

// Solve advances the angle by one step and places the crank on its circle
// around the center's position for this step.
func (c *Crank) Solve(ctx Context) (types.Point, error) {
	if err := c.validate(); err != nil {
		return types.Point{}, err
	}
	angle := wrapAngle(c.angle + c.step)
	pos := ctx.Resolve(c.center).Add(types.Polar(c.arm, angle))
	if !pos.IsFinite() {
		return types.Point{}, fmt.Errorf("%w: crank %q position %v is not finite", types.ErrDegenerateLinkage, c.name, pos)
	}
	c.angle, c.pos = angle, pos
	return c.pos, nil
}

// Rewind undoes one angular advance. The position is recomputed on the
// next Solve.
func (c *Crank) Rewind() {
	c.angle = wrapAngle(c.angle - c.step)
}

func (c *Crank) refs() []*Ref { return []*Ref{&c.center} }

func (c *Crank) validate() error {
	if !(c.arm > 0) || math.IsInf(c.arm, 0) {
		return fmt.Errorf("%w: crank %q arm length %g must be positive", types.ErrDegenerateLinkage, c.name, c.arm)
	}
	if math.IsNaN(c.step) || math.IsInf(c.step, 0) {
		return fmt.Errorf("%w: crank %q angular step %g is not finite", types.ErrDegenerateLinkage, c.name, c.step)
	}
	return nil
}

func (c *Crank) save() state { return state{pos: c.pos, angle: c.angle} }

func (c *Crank) restore(s state) {
	c.pos = s.pos
	c.angle = s.angle
}

// wrapAngle maps theta into [0, 2π).
func wrapAngle(theta float64) float64 {
	a := math.Mod(theta, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}
