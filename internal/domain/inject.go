package domain

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	m "runic.dev/pkg/runic/internal/model"
)

// SourceCache is the shared, process-lifetime cache of virtual files keyed by
// specifier. Insert is an idempotent upsert; re-inserting under the same
// specifier replaces the previous body (last write wins).
type SourceCache interface {
	Insert(file m.VirtualFile)
	Lookup(specifier m.Specifier) (m.VirtualFile, bool)
}

// Injector registers in-memory stand-ins for non-file program sources so
// downstream resolution treats them as if they existed on disk.
type Injector struct {
	cache SourceCache
}

// NewInjector constructs an Injector backed by the provided cache.
func NewInjector(cache SourceCache) *Injector {
	return &Injector{cache: cache}
}

// Inject validates the raw bytes as UTF-8, builds the virtual file record and
// inserts it into the cache. Decode failure aborts before any worker exists.
func (i *Injector) Inject(specifier m.Specifier, raw []byte, kind m.ContentKind) (m.VirtualFile, error) {
	if !utf8.Valid(raw) {
		return m.VirtualFile{}, fmt.Errorf("%w: %s", ErrDecode, specifier)
	}

	file := m.VirtualFile{
		Local:     specifier.FilePath(),
		Specifier: specifier,
		Kind:      kind,
		Source:    string(raw),
	}

	i.cache.Insert(file)
	slog.Debug("injected virtual source", "specifier", specifier, "kind", kind, "bytes", len(raw))

	return file, nil
}

// InjectEval registers inline eval text as a plain-text virtual file. When
// print is set the code is wrapped in an expression that prints its value.
func (i *Injector) InjectEval(specifier m.Specifier, code string, print bool) (m.VirtualFile, error) {
	if print {
		code = fmt.Sprintf("console.log(%s)", code)
	}

	return i.Inject(specifier, []byte(code), m.ContentPlain)
}
