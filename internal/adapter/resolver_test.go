package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runic.dev/pkg/runic/internal/domain"
	m "runic.dev/pkg/runic/internal/model"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestEntryResolver_ResolveFile(t *testing.T) {
	path := writeScript(t, "main.js", "console.log(1)")
	resolver := NewEntryResolver(NewMemorySourceCache())

	specifier, err := resolver.ResolveFile(path)
	require.NoError(t, err)
	assert.True(t, specifier.IsFile())
	assert.Equal(t, m.Path(path), specifier.FilePath())
}

func TestEntryResolver_ResolveFile_Missing(t *testing.T) {
	resolver := NewEntryResolver(NewMemorySourceCache())

	_, err := resolver.ResolveFile(filepath.Join(t.TempDir(), "absent.js"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestEntryResolver_ResolveFile_Directory(t *testing.T) {
	resolver := NewEntryResolver(NewMemorySourceCache())

	_, err := resolver.ResolveFile(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrResolution)
}

// An injected virtual record resolves even though nothing exists on disk.
func TestEntryResolver_ResolveFile_VirtualRecord(t *testing.T) {
	cache := NewMemorySourceCache()
	resolver := NewEntryResolver(cache)

	path := filepath.Join(t.TempDir(), "virtual.js")
	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	cache.Insert(m.VirtualFile{Specifier: specifier, Local: m.Path(path), Source: "1"})

	got, err := resolver.ResolveFile(path)
	require.NoError(t, err)
	assert.Equal(t, specifier, got)
}

func TestCacheFSProvider_OpenVirtual(t *testing.T) {
	cache := NewMemorySourceCache()
	provider := NewCacheFSProvider(cache)

	specifier := m.Specifier("file:///tmp/$eval.js")
	cache.Insert(m.VirtualFile{
		Specifier: specifier,
		Local:     "/tmp/$eval.js",
		Kind:      m.ContentPlain,
		Source:    "console.log(6*7)",
	})

	source, err := provider.Open(specifier)
	require.NoError(t, err)
	assert.True(t, source.Virtual)
	assert.Equal(t, "console.log(6*7)", source.Body)
	assert.Equal(t, m.ContentPlain, source.Kind)
}

func TestCacheFSProvider_OpenFile(t *testing.T) {
	path := writeScript(t, "main.js", "console.log(1)")
	provider := NewCacheFSProvider(NewMemorySourceCache())

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	source, err := provider.Open(specifier)
	require.NoError(t, err)
	assert.False(t, source.Virtual)
	assert.Equal(t, m.Path(path), source.Local)
}

func TestCacheFSProvider_OpenMissing(t *testing.T) {
	provider := NewCacheFSProvider(NewMemorySourceCache())

	specifier, err := m.FileSpecifier(filepath.Join(t.TempDir(), "absent.js"))
	require.NoError(t, err)

	_, err = provider.Open(specifier)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

// The cache shadows the filesystem: a virtual record under a real file's
// specifier wins.
func TestCacheFSProvider_CacheShadowsFile(t *testing.T) {
	path := writeScript(t, "main.js", "on disk")
	cache := NewMemorySourceCache()
	provider := NewCacheFSProvider(cache)

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	cache.Insert(m.VirtualFile{Specifier: specifier, Local: m.Path(path), Source: "in memory"})

	source, err := provider.Open(specifier)
	require.NoError(t, err)
	assert.True(t, source.Virtual)
	assert.Equal(t, "in memory", source.Body)
}
