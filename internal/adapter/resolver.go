package adapter

import (
	"fmt"
	"os"

	"runic.dev/pkg/runic/internal/domain"
	m "runic.dev/pkg/runic/internal/model"
)

// Reserved basenames for sources that never existed on disk.
const (
	stdinBasename = "$stdin.js"
	evalBasename  = "$eval.js"
)

// EntryResolver turns CLI input into canonical entry specifiers.
type EntryResolver struct {
	cache domain.SourceCache
}

// NewEntryResolver constructs a resolver that consults the cache before the
// filesystem, so injected sources resolve like real files.
func NewEntryResolver(cache domain.SourceCache) *EntryResolver {
	return &EntryResolver{cache: cache}
}

// ResolveFile resolves a script path argument. The path must name an
// existing file or a previously injected virtual record.
func (r *EntryResolver) ResolveFile(path string) (m.Specifier, error) {
	specifier, err := m.FileSpecifier(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrResolution, path, err)
	}

	if _, ok := r.cache.Lookup(specifier); ok {
		return specifier, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrResolution, path, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrResolution, path)
	}

	return specifier, nil
}

// ResolveStdin returns the synthetic main-module specifier for stdin runs.
func (r *EntryResolver) ResolveStdin() m.Specifier {
	return m.SyntheticSpecifier(stdinBasename)
}

// ResolveEval returns the synthetic main-module specifier for eval runs.
func (r *EntryResolver) ResolveEval() m.Specifier {
	return m.SyntheticSpecifier(evalBasename)
}

// CacheFSProvider satisfies the domain's SourceProvider with the in-memory
// cache first and the filesystem second. Downstream code cannot tell a
// virtual entry from a real one.
type CacheFSProvider struct {
	cache domain.SourceCache
}

// NewCacheFSProvider constructs a CacheFSProvider.
func NewCacheFSProvider(cache domain.SourceCache) *CacheFSProvider {
	return &CacheFSProvider{cache: cache}
}

// Open resolves a specifier to a readable source.
func (p *CacheFSProvider) Open(specifier m.Specifier) (domain.ResolvedSource, error) {
	if file, ok := p.cache.Lookup(specifier); ok {
		return domain.ResolvedSource{
			Specifier: specifier,
			Local:     file.Local,
			Kind:      file.Kind,
			Body:      file.Source,
			Virtual:   true,
		}, nil
	}

	local := specifier.FilePath()

	info, err := os.Stat(string(local))
	if err != nil {
		return domain.ResolvedSource{}, fmt.Errorf("%w: %s: %v", domain.ErrResolution, specifier, err)
	}

	if info.IsDir() {
		return domain.ResolvedSource{}, fmt.Errorf("%w: %s is a directory", domain.ErrResolution, specifier)
	}

	return domain.ResolvedSource{
		Specifier: specifier,
		Local:     local,
		Kind:      m.ContentScript,
	}, nil
}
