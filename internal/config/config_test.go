package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search at an empty temp tree.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "patients.json", cfg.DataFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "green", cfg.Theme)
	assert.True(t, cfg.Splash)
	assert.False(t, cfg.AutosaveOnExit)
}

func TestDir_WithoutHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	dir := Dir()
	assert.True(t, filepath.IsAbs(dir), dir)
	assert.Equal(t, filepath.Join(os.TempDir(), appName), dir)
	assert.True(t, filepath.IsAbs(DefaultConfig().LogFile))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "patients.json", cfg.DataFile)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: ward.json\ntheme: Amber\nsplash: false\n"), 0644))
	t.Setenv("PATIENTREC_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ward.json", cfg.DataFile)
	assert.Equal(t, "amber", cfg.Theme)
	assert.False(t, cfg.Splash)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PATIENTREC_DATA_FILE=fromenv.json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PATIENTREC_DATA_FILE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fromenv.json", cfg.DataFile)
}

func TestLoad_InvalidTheme(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: neon\n"), 0644))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataFile = "  "
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Theme = ""
	cfg.LogLevel = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "green", cfg.Theme)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestWriteDefault(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sub", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DataFile, cfg.DataFile)

	assert.Error(t, WriteDefault(path))
}
