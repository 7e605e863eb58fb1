package domain

import (
	m "runic.dev/pkg/runic/internal/model"
)

// ResolvedSource is what a provider yields for a specifier. Virtual entries
// carry their body inline; file-backed entries are read from Local by the
// engine. Args are the program's own arguments, set by the worker factory
// after resolution and handed to the child verbatim.
type ResolvedSource struct {
	Specifier m.Specifier
	Local     m.Path
	Kind      m.ContentKind
	Body      string
	Virtual   bool
	Args      []string
}

// SourceProvider abstracts "can this specifier be read". The worker factory
// and the engine depend on it instead of the filesystem, so an in-memory
// entry satisfies them exactly like a real file.
type SourceProvider interface {
	Open(specifier m.Specifier) (ResolvedSource, error)
}
