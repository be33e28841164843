package types

import "maps"

// JointPosition is one joint's coordinates inside a Frame.
type JointPosition struct {
	Name  string `json:"name"`
	Point Point  `json:"point"`
}

// Frame is a snapshot of every joint of a linkage after a step. Joints
// appear in solve order. Step 0 is the initial configuration. Angles holds
// the arm angle in radians of every crank, keyed by joint name; it is nil
// when the linkage has no cranks.
type Frame struct {
	Step   int                `json:"step"`
	Joints []JointPosition    `json:"joints"`
	Angles map[string]float64 `json:"angles,omitempty"`
}

// Lookup returns the position of the named joint.
func (f Frame) Lookup(name string) (Point, bool) {
	for _, jp := range f.Joints {
		if jp.Name == name {
			return jp.Point, true
		}
	}
	return Point{}, false
}

// Names returns the joint names in frame order.
func (f Frame) Names() []string {
	names := make([]string, len(f.Joints))
	for i, jp := range f.Joints {
		names[i] = jp.Name
	}
	return names
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	joints := make([]JointPosition, len(f.Joints))
	copy(joints, f.Joints)
	return Frame{Step: f.Step, Joints: joints, Angles: maps.Clone(f.Angles)}
}

// AngleNames returns the names of the joints that carry an angle, in frame
// order.
func (f Frame) AngleNames() []string {
	var names []string
	for _, jp := range f.Joints {
		if _, ok := f.Angles[jp.Name]; ok {
			names = append(names, jp.Name)
		}
	}
	return names
}

// Sink receives frames as they are produced. Implementations decide the
// storage format (memory, CSV, database).
type Sink interface {
	Append(frame Frame) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(frame Frame) error

// Append calls f(frame).
func (f SinkFunc) Append(frame Frame) error {
	return f(frame)
}
