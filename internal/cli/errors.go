package cli

import (
	"errors"
	"io/fs"

	"github.com/mesh-intelligence/linkage/internal/export"
	"github.com/mesh-intelligence/linkage/internal/plot"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// exitError carries the exit code chosen by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// userErrors are failures caused by input: bad specs, unreachable
// geometry, unknown runs or flags.
var userErrors = []error{
	types.ErrInvalidSpec,
	types.ErrUnknownJointKind,
	types.ErrMissingDependency,
	types.ErrDuplicateJoint,
	types.ErrDegenerateLinkage,
	types.ErrUnreachableConstraint,
	types.ErrUnseededPivot,
	types.ErrFrameMismatch,
	types.ErrRunNotFound,
	types.ErrInvalidID,
	types.ErrInvalidState,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	export.ErrUnknownFormat,
	plot.ErrUnknownAxis,
	plot.ErrNoFrames,
	fs.ErrNotExist,
}

// exitCode maps err to a process exit code. Errors not tagged by a command
// are classified by their sentinel; anything unknown is a system error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
