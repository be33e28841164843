package types

import (
	"errors"
	"fmt"
)

// Solver errors. Construction-time failures are returned by linkage.New and
// linkage.Build; step-time failures are wrapped in a StepError.
var (
	ErrDegenerateLinkage     = errors.New("degenerate linkage")
	ErrUnreachableConstraint = errors.New("unreachable constraint")
	ErrMissingDependency     = errors.New("missing dependency")
	ErrUnseededPivot         = errors.New("pivot has no initial position")
	ErrDuplicateJoint        = errors.New("duplicate joint")
	ErrUnknownJointKind      = errors.New("unknown joint kind")
	ErrInvalidSpec           = errors.New("invalid linkage spec")
	ErrFrameMismatch         = errors.New("frame joints do not match trajectory")
)

// StepError reports which joint failed at which step. It unwraps to the
// underlying sentinel so callers can use errors.Is.
type StepError struct {
	Linkage string // Linkage name.
	Joint   string // Name of the joint whose solve failed.
	Step    int    // 1-based index of the step that was attempted.
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("linkage %q: step %d: joint %q: %v", e.Linkage, e.Step, e.Joint, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// SinkError reports a frame that was committed by a step but could not be
// appended to a sink. The linkage has already advanced past Frame, so the
// caller holds the only copy.
type SinkError struct {
	Frame Frame
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("append frame %d: %v", e.Frame.Step, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
