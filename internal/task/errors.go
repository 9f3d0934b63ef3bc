package task

import "errors"

// Sentinel errors classifying every failure the graph operations surface.
// Call sites wrap them with the offending ids; callers match with errors.Is.
var (
	ErrNotFound           = errors.New("task not found")
	ErrAlreadyExists      = errors.New("dependency already exists")
	ErrSelfDependency     = errors.New("task cannot depend on itself")
	ErrCircularDependency = errors.New("dependency would create a cycle")
	ErrUnsupported        = errors.New("operation not supported by store")
	ErrMalformedRange     = errors.New("malformed id range")
)
