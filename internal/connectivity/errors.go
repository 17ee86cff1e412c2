package connectivity

import (
	"errors"
	"fmt"
)

// Callers branch on these with errors.Is. Context is attached with %w.
var (
	// ErrInvalidParameter reports a bad sparseness, population size, delay,
	// timestep, or skip-group count. It is raised before any I/O or sampling.
	ErrInvalidParameter = errors.New("connectivity: invalid parameter")

	// ErrFileNotFound reports a weight-matrix file that cannot be opened.
	ErrFileNotFound = errors.New("connectivity: weight file not found")

	// ErrMalformedRecord reports a weight-matrix line that is not
	// exactly "<pre> <post> <weight>", or a file with no header line.
	ErrMalformedRecord = errors.New("connectivity: malformed record")

	// ErrOutOfRange reports a synapse index outside its population.
	ErrOutOfRange = errors.New("connectivity: index out of range")

	// ErrConfiguration reports a build-order violation, such as connecting
	// before the timestep is set or changing it afterwards.
	ErrConfiguration = errors.New("connectivity: configuration error")
)

// RecordError locates a failure inside a weight-matrix file.
// Line is the 1-based physical line number, comments included.
type RecordError struct {
	Path string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// invalidf wraps ErrInvalidParameter with a method context.
func invalidf(method, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", method, fmt.Sprintf(format, args...), ErrInvalidParameter)
}
