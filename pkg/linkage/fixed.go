package linkage

import (
	"fmt"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Fixed is an anchor whose position never changes.
type Fixed struct {
	base
}

// NewFixed returns an anchor at p.
func NewFixed(name string, p types.Point) *Fixed {
	return &Fixed{base: base{name: name, pos: p}}
}

// Solve returns the constant position.
func (f *Fixed) Solve(Context) (types.Point, error) {
	return f.pos, nil
}

func (f *Fixed) refs() []*Ref { return nil }

func (f *Fixed) validate() error {
	if !f.pos.IsFinite() {
		return fmt.Errorf("%w: fixed %q position %v is not finite", types.ErrDegenerateLinkage, f.name, f.pos)
	}
	return nil
}

func (f *Fixed) save() state { return state{pos: f.pos} }

func (f *Fixed) restore(s state) { f.pos = s.pos }
