package generator

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by parameter validation failures.
var ErrInvalidParams = errors.New("invalid generation parameters")

// ErrEmptyOutput is wrapped when the service returns nothing usable.
var ErrEmptyOutput = errors.New("generative service returned empty output")

// GenerationError reports a failed call to the generative service or a
// response that could not be used.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NotFoundError reports a page or section that is not in the blueprint.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in blueprint", e.Kind, e.Key)
}

// IsGenerationError reports whether err is or wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
