package domain

import "errors"

// Error classes for the run pipeline. Callers match with errors.Is; every
// component treats these as attempt-fatal except the watch supervisor, which
// downgrades runtime and creation failures to log-and-wait.
var (
	// ErrConfig marks invalid or contradictory permission/entry configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrDecode marks non-text bytes where text was required.
	ErrDecode = errors.New("source is not valid UTF-8")

	// ErrResolution marks an entry point that cannot be resolved.
	ErrResolution = errors.New("cannot resolve entry")

	// ErrCreation marks a failed worker construction.
	ErrCreation = errors.New("cannot create worker")

	// ErrRuntime marks a failure during program execution.
	ErrRuntime = errors.New("program execution failed")
)
