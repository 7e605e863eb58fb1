package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionOptions_ConfigValuesApply(t *testing.T) {
	viper.Set(allowReadConfigKey, []string{"/etc"})
	viper.Set(allowNetConfigKey, []string{"example.com"})
	t.Cleanup(func() {
		viper.Set(allowReadConfigKey, []string{})
		viper.Set(allowNetConfigKey, []string{})
	})

	cmd := newRunCmd()
	require.NoError(t, cmd.Flags().Parse(nil))

	opts := permissionOptions(cmd.Flags())
	assert.Equal(t, []string{"/etc"}, opts.AllowRead)
	assert.Equal(t, []string{"example.com"}, opts.AllowNet)
	assert.False(t, opts.AllowAll)
}

func TestPermissionOptions_FlagOverridesConfig(t *testing.T) {
	viper.Set(allowReadConfigKey, []string{"/etc"})
	t.Cleanup(func() { viper.Set(allowReadConfigKey, []string{}) })

	cmd := newRunCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--allow-read=/srv"}))

	opts := permissionOptions(cmd.Flags())
	assert.Equal(t, []string{"/srv"}, opts.AllowRead)
}

func TestPermissionOptions_EmptyWithoutGrants(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.Flags().Parse(nil))

	assert.True(t, permissionOptions(cmd.Flags()).Empty())
}
