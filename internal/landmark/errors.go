package landmark

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is matched by every ShapeError.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyTarget is returned when a placeholder target is evaluated.
	ErrEmptyTarget = errors.New("target is empty")
	// ErrNilPoints is returned by New when no point array is supplied.
	ErrNilPoints = errors.New("target points are nil")
	// ErrUnsupportedMetric is returned by New for metric kinds that have no
	// implementation.
	ErrUnsupportedMetric = errors.New("unsupported metric")
)

// ShapeError reports a template state whose selected slice does not line up
// with the target's points. It is local to one evaluation; callers abort
// that evaluation and carry on.
type ShapeError struct {
	Op         string // "Matching" or "GradMatching"
	WantDim    int
	WantPoints int
	GotDim     int
	GotPoints  int
	Slot       int
	Steps      int
}

func (e *ShapeError) Error() string {
	if e.Slot < 0 || e.Slot >= e.Steps {
		return fmt.Sprintf("landmark %s: time slot %d outside %d steps: %v", e.Op, e.Slot, e.Steps, ErrShapeMismatch)
	}
	return fmt.Sprintf("landmark %s: state slice is %dx%d, target points are %dx%d: %v",
		e.Op, e.GotDim, e.GotPoints, e.WantDim, e.WantPoints, ErrShapeMismatch)
}

// Is lets errors.Is(err, ErrShapeMismatch) match.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// ErrInvalidTarget is wrapped by every Validate failure.
var ErrInvalidTarget = errors.New("invalid target")
