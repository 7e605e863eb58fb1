package cmd

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestParseSlogLevel(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{name: "empty falls back", value: "", want: slog.LevelWarn},
		{name: "debug", value: "debug", want: slog.LevelDebug},
		{name: "info", value: "INFO", want: slog.LevelInfo},
		{name: "warn", value: "warn", want: slog.LevelWarn},
		{name: "warning alias", value: "warning", want: slog.LevelWarn},
		{name: "error", value: "error", want: slog.LevelError},
		{name: "numeric", value: "-4", want: slog.LevelDebug},
		{name: "garbage falls back", value: "loud", want: slog.LevelWarn},
		{name: "padded", value: "  Error  ", want: slog.LevelError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseSlogLevel(tc.value, slog.LevelWarn))
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, "node", viper.GetString(engineCommandKey))
	assert.Equal(t, "-e", viper.GetString(engineEvalFlagKey))
	assert.Equal(t, "Process", viper.GetString(jobLabelConfigKey))
	assert.False(t, viper.GetBool(noClearScreenConfigKey))
	assert.False(t, viper.GetBool(allowAllConfigKey))
	assert.Empty(t, viper.GetStringSlice(allowReadConfigKey))
}
