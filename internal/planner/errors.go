package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationUnavailable is the only generation error surfaced to callers.
	// Upstream, parse and schema details are logged instead.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrPersistence           = errors.New("persistence failure")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("active subscription required")
)

// SchemaViolation describes the first place a payload departs from its schema.
type SchemaViolation struct {
	Path     string
	Expected string
	Got      string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation at %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}
