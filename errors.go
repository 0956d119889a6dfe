package dripper

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrDescent indicates a path step could not be resolved.
	// Missing keys, non-indexable nodes and out-of-range indices all report it.
	ErrDescent = errors.New("descent failed")

	// ErrInvalidDeclaration indicates a declaration has an unusable shape.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrUnknownConverter indicates a declaration named an unregistered converter.
	ErrUnknownConverter = errors.New("unknown converter")

	// ErrUnknownMerger indicates a declaration named an unregistered merge operator.
	ErrUnknownMerger = errors.New("unknown merger")

	// ErrConvert indicates a converter rejected its input.
	ErrConvert = errors.New("convert failed")

	// ErrMerge indicates a merge operator could not combine two values.
	ErrMerge = errors.New("merge failed")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// Descent failure reasons. They are informational; callers match ErrDescent.
const (
	reasonMissingKey    = "missing key"
	reasonNotIndexable  = "not indexable"
	reasonOutOfRange    = "index out of range"
	reasonUnexportedPos = "unexported field"
)

// DescentError reports the step at which a path stopped resolving.
type DescentError struct {
	Path   Path   // Path being resolved
	Depth  int    // Position of the failing step within Path
	Reason string // Human-readable cause
}

func (e *DescentError) Error() string {
	step := "<none>"
	if e.Depth >= 0 && e.Depth < e.Path.Len() {
		step = e.Path.steps[e.Depth].String()
	}
	return fmt.Sprintf("%s at step %d (%s) of %s: %s", ErrDescent.Error(), e.Depth, step, e.Path.String(), e.Reason)
}

func (e *DescentError) Unwrap() error {
	return ErrDescent
}

// DeclarationError reports a malformed declaration found during compilation.
type DeclarationError struct {
	Err    error  // Underlying sentinel error (ErrInvalidDeclaration, etc.)
	Field  string // Dotted location of the offending declaration, empty at top level
	Detail string // What was wrong
}

func (e *DeclarationError) Error() string {
	if e.Field != "" && e.Detail != "" {
		return fmt.Sprintf("%s (field %s): %s", e.Err.Error(), e.Field, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newDeclarationError creates a DeclarationError with a formatted detail.
func newDeclarationError(sentinel error, field, format string, args ...any) error {
	return &DeclarationError{
		Err:    sentinel,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
