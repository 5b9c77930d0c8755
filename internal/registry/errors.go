package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure kinds. Concrete failures wrap one of
// these, so callers match with errors.Is.
var (
	ErrIndexFetch     = errors.New("index fetch failed")
	ErrObjectFetch    = errors.New("object fetch failed")
	ErrObjectNotFound = errors.New("object not found")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// NotFoundError reports a target missing from the registry.
type NotFoundError struct {
	Target Target
}

func (e *NotFoundError) Error() string {
	return "object not found: " + e.Target.Path()
}

// Is makes NotFoundError match ErrObjectNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrObjectNotFound
}
