package fractal

import (
	"errors"
	"fmt"
)

// Domain errors for pipeline operations.
var (
	// ErrInvalidViewport indicates a viewport with a non-positive or
	// non-finite size or a non-finite center.
	ErrInvalidViewport = errors.New("fractal: invalid viewport")

	// ErrGridTooLarge indicates the requested grids cannot be allocated by
	// the selected backend.
	ErrGridTooLarge = errors.New("fractal: grid too large")

	// ErrNotComplete indicates a flush was requested before the computation
	// reached its step target.
	ErrNotComplete = errors.New("fractal: computation not complete")

	// ErrNotInitialized indicates a stage was used before Initialize succeeded.
	ErrNotInitialized = errors.New("fractal: stage not initialized")

	// ErrEmptyColorTable indicates a color table with no entries.
	ErrEmptyColorTable = errors.New("fractal: empty color table")
)

// StageError wraps an initialization failure with the name of the stage that
// produced it.
type StageError struct {
	Stage   string
	Wrapped error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage:\n%v", e.Stage, e.Wrapped)
}

func (e *StageError) Unwrap() error {
	return e.Wrapped
}
