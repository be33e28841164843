package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Joint kinds accepted in a JointSpec.
const (
	KindFixed = "fixed"
	KindCrank = "crank"
	KindPivot = "pivot"
	KindRigid = "rigid"
)

// JointKinds lists all joint kinds for enumeration.
var JointKinds = []string{
	KindFixed,
	KindCrank,
	KindPivot,
	KindRigid,
}

// LinkageSpec is the declarative construction input for a linkage. Joints
// are listed in solve order; a joint may only refer to joints listed before
// it.
type LinkageSpec struct {
	Name   string      `json:"name" yaml:"name"`
	Joints []JointSpec `json:"joints" yaml:"joints"`
}

// JointSpec describes one joint. Which fields are used depends on Kind:
//
//	fixed: Position
//	crank: Joint0 (center), Distance0 (arm), Angle (step per tick),
//	       Phase or Position (initial angle)
//	pivot: Joint0, Joint1, Distance0, Distance1, Position (seed)
//	rigid: Joint0 (origin), Joint1 (reference), Distance0, Angle
type JointSpec struct {
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Position  *Point   `json:"position,omitempty" yaml:"position,omitempty"`
	Joint0    *RefSpec `json:"joint0,omitempty" yaml:"joint0,omitempty"`
	Joint1    *RefSpec `json:"joint1,omitempty" yaml:"joint1,omitempty"`
	Distance0 float64  `json:"distance0,omitempty" yaml:"distance0,omitempty"`
	Distance1 float64  `json:"distance1,omitempty" yaml:"distance1,omitempty"`
	Angle     float64  `json:"angle,omitempty" yaml:"angle,omitempty"`
	Phase     *float64 `json:"phase,omitempty" yaml:"phase,omitempty"`
}

// RefSpec names a dependency: either another joint by name or a literal
// anchor point. In YAML and JSON a string is a joint name and an object
// with x and y is a point.
type RefSpec struct {
	Joint string
	At    *Point
}

// UnmarshalYAML accepts a scalar joint name or a point mapping.
func (r *RefSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Joint = value.Value
		r.At = nil
		return nil
	}
	var p Point
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	r.Joint = ""
	r.At = &p
	return nil
}

// MarshalYAML writes the joint name or the point.
func (r RefSpec) MarshalYAML() (any, error) {
	if r.At != nil {
		return r.At, nil
	}
	return r.Joint, nil
}

// UnmarshalJSON accepts a JSON string joint name or a point object.
func (r *RefSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		r.At = nil
		return json.Unmarshal(data, &r.Joint)
	}
	var p Point
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	r.Joint = ""
	r.At = &p
	return nil
}

// MarshalJSON writes the joint name or the point.
func (r RefSpec) MarshalJSON() ([]byte, error) {
	if r.At != nil {
		return json.Marshal(r.At)
	}
	return json.Marshal(r.Joint)
}

// String returns the joint name or the formatted point.
func (r RefSpec) String() string {
	if r.At != nil {
		return r.At.String()
	}
	return r.Joint
}
