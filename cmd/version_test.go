package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	withStubs(t, &stubEngine{})

	out := &bytes.Buffer{}
	root := newTestRoot(t, newVersionCmd())
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "version")
}
