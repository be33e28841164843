package linkage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Build constructs a linkage from a declarative spec. Joints are created in
// the listed order, which is also the solve order; a reference to a name
// that is not defined earlier fails with ErrMissingDependency.
//
// Crank and pivot distances left at zero are measured from the joint's
// position to its references' initial positions, and a crank without an
// explicit phase starts at the angle of its position around the center.
func Build(spec types.LinkageSpec) (*Linkage, error) {
	if len(spec.Joints) == 0 {
		return nil, fmt.Errorf("%w: linkage %q has no joints", types.ErrInvalidSpec, spec.Name)
	}

	byName := make(map[string]Joint, len(spec.Joints))
	joints := make([]Joint, 0, len(spec.Joints))
	for i, js := range spec.Joints {
		j, err := buildJoint(js, byName)
		if err != nil {
			return nil, fmt.Errorf("joint %d %q: %w", i, js.Name, err)
		}
		if js.Name != "" {
			if _, ok := byName[js.Name]; ok {
				return nil, fmt.Errorf("joint %d: %w: name %q", i, types.ErrDuplicateJoint, js.Name)
			}
			byName[js.Name] = j
		}
		joints = append(joints, j)
	}
	return New(spec.Name, joints...)
}

func buildJoint(js types.JointSpec, byName map[string]Joint) (Joint, error) {
	switch strings.ToLower(js.Kind) {
	case types.KindFixed:
		if js.Position == nil {
			return nil, fmt.Errorf("%w: fixed joint needs a position", types.ErrInvalidSpec)
		}
		return NewFixed(js.Name, *js.Position), nil

	case types.KindCrank:
		center, err := resolveRef(js.Joint0, "joint0", byName)
		if err != nil {
			return nil, err
		}
		arm := js.Distance0
		if arm == 0 && js.Position != nil {
			arm = js.Position.Dist(center.initial())
		}
		c := NewCrank(js.Name, center, arm, js.Angle)
		switch {
		case js.Phase != nil:
			c.SetAngle(*js.Phase)
		case js.Position != nil:
			c.SetAngle(js.Position.Sub(center.initial()).Angle())
		}
		return c, nil

	case types.KindPivot:
		a0, err := resolveRef(js.Joint0, "joint0", byName)
		if err != nil {
			return nil, err
		}
		a1, err := resolveRef(js.Joint1, "joint1", byName)
		if err != nil {
			return nil, err
		}
		d0, d1 := js.Distance0, js.Distance1
		if js.Position != nil {
			if d0 == 0 {
				d0 = js.Position.Dist(a0.initial())
			}
			if d1 == 0 {
				d1 = js.Position.Dist(a1.initial())
			}
		}
		p := NewPivot(js.Name, a0, a1, d0, d1)
		if js.Position != nil {
			p.Seed(*js.Position)
		}
		return p, nil

	case types.KindRigid:
		origin, err := resolveRef(js.Joint0, "joint0", byName)
		if err != nil {
			return nil, err
		}
		reference, err := resolveRef(js.Joint1, "joint1", byName)
		if err != nil {
			return nil, err
		}
		distance, angle := js.Distance0, js.Angle
		if distance == 0 && js.Position != nil {
			o := origin.initial()
			offset := js.Position.Sub(o)
			distance = offset.Norm()
			angle = offset.Angle() - reference.initial().Sub(o).Angle()
		}
		return NewRigid(js.Name, origin, reference, distance, angle), nil

	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", types.ErrUnknownJointKind, js.Kind, strings.Join(types.JointKinds, ", "))
	}
}

// resolveRef turns a spec reference into a Ref, looking joint names up
// among the joints defined so far.
func resolveRef(rs *types.RefSpec, field string, byName map[string]Joint) (Ref, error) {
	if rs == nil {
		return Ref{}, fmt.Errorf("%w: %s is required", types.ErrInvalidSpec, field)
	}
	if rs.At != nil {
		return At(*rs.At), nil
	}
	if rs.Joint == "" {
		return Ref{}, fmt.Errorf("%w: %s is empty", types.ErrInvalidSpec, field)
	}
	j, ok := byName[rs.Joint]
	if !ok {
		return Ref{}, fmt.Errorf("%w: %s references %q, which is not defined earlier", types.ErrMissingDependency, field, rs.Joint)
	}
	return On(j), nil
}

// LoadSpec reads a linkage spec from a .json, .yaml or .yml file. Unknown
// fields are rejected.
func LoadSpec(path string) (types.LinkageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.LinkageSpec{}, fmt.Errorf("read spec: %w", err)
	}
	spec, err := ParseSpec(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return types.LinkageSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return spec, nil
}

// ParseSpec decodes a linkage spec from JSON or YAML.
func ParseSpec(data []byte, isJSON bool) (types.LinkageSpec, error) {
	var spec types.LinkageSpec
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return types.LinkageSpec{}, fmt.Errorf("%w: %v", types.ErrInvalidSpec, err)
		}
		return spec, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return types.LinkageSpec{}, fmt.Errorf("%w: %v", types.ErrInvalidSpec, err)
	}
	return spec, nil
}
