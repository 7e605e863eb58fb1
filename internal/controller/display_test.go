package controller

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleDisplay_PlainOutput(t *testing.T) {
	var out bytes.Buffer

	display := NewConsoleDisplay(&out, false)
	display.Status("Process", "started")
	display.Warn("careful")
	display.Error(assert.AnError)

	output := out.String()
	assert.Contains(t, output, "Watcher Process started")
	assert.Contains(t, output, "careful")
	assert.Contains(t, output, "error:")
	assert.NotContains(t, output, "\x1b[")
}

// Screen clearing only makes sense on a terminal; without one it is a no-op
// so piped output stays free of escape sequences.
func TestConsoleDisplay_ClearScreenWithoutTTY(t *testing.T) {
	var out bytes.Buffer

	display := NewConsoleDisplay(&out, false)
	display.ClearScreen()

	assert.Empty(t, out.String())
}

func TestConsoleDisplay_ClearScreenWithTTY(t *testing.T) {
	var out bytes.Buffer

	display := NewConsoleDisplay(&out, true)
	display.ClearScreen()

	assert.Equal(t, "\x1b[2J\x1b[1;1H", out.String())
}

func TestRenderEntrySummary(t *testing.T) {
	rendered := RenderEntrySummary("file:///srv/main.js", "script", [][2]string{
		{"read", "."},
		{"net", "example.com"},
	})

	assert.Contains(t, rendered, "file:///srv/main.js")
	assert.Contains(t, rendered, "script")
	assert.Contains(t, rendered, "permissions.read")
	assert.Contains(t, rendered, "example.com")
}
