package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfigMissing(t *testing.T) {
	pc, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, pc)
}

func TestLoadProjectConfigEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte("  \n"), 0o644))

	pc, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Nil(t, pc)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
include:
  - "src/**/*.ts"
exclude:
  - "**/*.spec.ts"
max_file_size: 2048
focus: "the robot controller"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(content), 0o644))

	pc, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, []string{"src/**/*.ts"}, pc.Include)
	assert.Equal(t, []string{"**/*.spec.ts"}, pc.Exclude)
	assert.Equal(t, int64(2048), pc.MaxFileSize)
	assert.Equal(t, "the robot controller", pc.Focus)
}

func TestLoadProjectConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte("include: [unterminated"), 0o644))

	_, err := LoadProjectConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestLoadProjectConfigNegativeSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte("max_file_size: -1\n"), 0o644))

	_, err := LoadProjectConfig(dir)
	require.Error(t, err)
}

func TestProjectConfigApply(t *testing.T) {
	sc := DefaultConfig().Scan
	pc := &ProjectConfig{Include: []string{"*.go"}, MaxFileSize: 10}
	pc.Apply(&sc)

	assert.Equal(t, []string{"*.go"}, sc.Include)
	assert.Equal(t, DefaultExclude, sc.Exclude)
	assert.Equal(t, int64(10), sc.MaxFileSize)

	var nilPC *ProjectConfig
	nilPC.Apply(&sc)
	assert.Equal(t, []string{"*.go"}, sc.Include)
}
