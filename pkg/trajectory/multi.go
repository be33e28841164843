package trajectory

import (
	"fmt"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// multi fans a frame out to several sinks in order.
type multi []types.Sink

// Multi returns a sink that appends every frame to each of sinks in turn,
// stopping at the first error. Nil sinks are skipped.
func Multi(sinks ...types.Sink) types.Sink {
	m := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Append(f types.Frame) error {
	for i, s := range m {
		if err := s.Append(f); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}
