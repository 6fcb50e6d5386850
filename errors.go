package keyline

import (
	"errors"
	"fmt"
)

// Structural errors surfaced during Validate or evaluation. All errors
// returned by this package wrap one of these sentinels (or are an
// *EvalError wrapping one), so callers can branch with errors.Is.
var (
	ErrVertexCountMismatch = errors.New("path keyframes have different vertex counts")
	ErrClosedMismatch      = errors.New("path keyframes disagree on closed flag")
	ErrBadParent           = errors.New("parent layer index out of range")
	ErrParentCycle         = errors.New("parent chain contains a cycle")
	ErrBadMatte            = errors.New("matte layer has no layer directly above it")
	ErrUnknownAsset        = errors.New("instance references an unknown asset")
	ErrKeyframeOrder       = errors.New("keyframe times are not strictly increasing")
	ErrInstanceDepth       = errors.New("instance nesting too deep")
)

// EvalError wraps an evaluation failure with enough context to locate
// the fault: the layer it occurred in, the property track involved, and
// the sample frame.
type EvalError struct {
	Layer string
	Index int
	Track string
	Frame float64
	Err   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("keyline: layer %q (#%d) %s at frame %g: %v",
		e.Layer, e.Index, e.Track, e.Frame, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErr(name string, index int, track string, frame float64, err error) *EvalError {
	return &EvalError{Layer: name, Index: index, Track: track, Frame: frame, Err: err}
}
