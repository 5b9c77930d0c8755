package explorer

import (
	"errors"

	"github.com/zjrosen/regview/internal/registry"
)

// ErrorMessage renders err for the Error view, distinguishing the three
// failure kinds.
func ErrorMessage(err error) string {
	var nf *registry.NotFoundError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return "Object not found: " + nf.Target.Path()
	case errors.Is(err, registry.ErrObjectNotFound):
		return "Object not found"
	case errors.Is(err, registry.ErrIndexFetch):
		return "Error fetching index"
	case errors.Is(err, registry.ErrObjectFetch):
		return "Error fetching object"
	default:
		return err.Error()
	}
}
