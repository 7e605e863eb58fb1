package adapter

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runic.dev/pkg/runic/internal/domain"
	m "runic.dev/pkg/runic/internal/model"
)

// shEngine builds an engine around /bin/sh so tests run without a JavaScript
// interpreter installed.
func shEngine(tracker *domain.DepTracker) (*CommandEngine, *bytes.Buffer) {
	engine := NewCommandEngine("sh", tracker)
	engine.SetEvalFlag("-c")

	var out bytes.Buffer
	engine.SetOutput(&out, &out)

	return engine, &out
}

func mustGrant(t *testing.T, opts m.PermissionOptions) *domain.Grant {
	t.Helper()

	grant, err := domain.BuildGrant(opts)
	require.NoError(t, err)

	return grant
}

func TestCommandEngine_VirtualSource(t *testing.T) {
	engine, out := shEngine(nil)

	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Specifier: "file:///tmp/$eval.js",
		Body:      "echo 42",
		Virtual:   true,
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "42\n", out.String())
}

func TestCommandEngine_ExitCodePassedThrough(t *testing.T) {
	engine, _ := shEngine(nil)

	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Body:    "exit 7",
		Virtual: true,
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestCommandEngine_FileSource(t *testing.T) {
	path := writeScript(t, "main.sh", "echo from-file")
	engine, out := shEngine(nil)

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Specifier: specifier,
		Local:     m.Path(path),
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "from-file\n", out.String())
}

// The grant travels to the child process as environment variables.
func TestCommandEngine_GrantEnvironment(t *testing.T) {
	engine, _ := shEngine(nil)

	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Body:    `[ "$RUNIC_ALLOW_ALL" = "1" ] || exit 9`,
		Virtual: true,
	}, mustGrant(t, m.PermissionOptions{AllowAll: true}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestCommandEngine_TracksFileEntries(t *testing.T) {
	path := writeScript(t, "main.sh", "true")
	tracker := domain.NewDepTracker()
	engine, _ := shEngine(tracker)

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	_, err = engine.Exec(context.Background(), domain.ResolvedSource{
		Specifier: specifier,
		Local:     m.Path(path),
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, []string{path}, tracker.Paths())
}

// Arguments after the script belong to the program and arrive as its argv.
func TestCommandEngine_PassesScriptArguments(t *testing.T) {
	path := writeScript(t, "main.sh", `printf '%s\n' "$@"`)
	engine, out := shEngine(nil)

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Specifier: specifier,
		Local:     m.Path(path),
		Args:      []string{"one", "--two"},
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "one\n--two\n", out.String())
}

func TestCommandEngine_PassesArgumentsToVirtualSource(t *testing.T) {
	engine, out := shEngine(nil)

	// sh -c binds the first trailing argument to $0.
	code, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Body:    `printf '%s\n' "$0"`,
		Virtual: true,
		Args:    []string{"alpha"},
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "alpha\n", out.String())
}

// Programs report loaded files by appending paths to the file named in
// RUNIC_DEP_FILE; the engine folds them into the tracker after the run.
func TestCommandEngine_CollectsReportedDependencies(t *testing.T) {
	path := writeScript(t, "main.sh", `printf '/tmp/runic-dep-a.js\n/tmp/runic-dep-b.js\n' > "$RUNIC_DEP_FILE"`)
	tracker := domain.NewDepTracker()
	engine, _ := shEngine(tracker)

	specifier, err := m.FileSpecifier(path)
	require.NoError(t, err)

	_, err = engine.Exec(context.Background(), domain.ResolvedSource{
		Specifier: specifier,
		Local:     m.Path(path),
	}, mustGrant(t, m.PermissionOptions{}))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/tmp/runic-dep-a.js", "/tmp/runic-dep-b.js", path}, tracker.Paths())
}

func TestCommandEngine_Cancellation(t *testing.T) {
	engine, _ := shEngine(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := engine.Exec(ctx, domain.ResolvedSource{
		Body:    "sleep 10",
		Virtual: true,
	}, mustGrant(t, m.PermissionOptions{}))

	assert.Error(t, err)
}

func TestCommandEngine_MissingInterpreter(t *testing.T) {
	engine := NewCommandEngine("runic-no-such-interpreter", nil)

	_, err := engine.Exec(context.Background(), domain.ResolvedSource{
		Body:    "true",
		Virtual: true,
	}, mustGrant(t, m.PermissionOptions{}))

	assert.Error(t, err)
}
