package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `log_level: debug
extract:
  dir: /work/project
  options:
    include_untracked: true
    max_commits: 5
    diff_context_lines: 2
    sanitize_for_ai: true
scan:
  root: /work
  workers: 4
server:
  address: 127.0.0.1:9000
  base_path: /api/v1
  auth_token: sekrit
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/work/project", cfg.Extract.Dir)
	assert.Equal(t, 5, cfg.Extract.Options.MaxCommits)
	assert.True(t, cfg.Extract.Options.SanitizeForAI)
	assert.Equal(t, "/work", cfg.Scan.Root)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, "sekrit", cfg.Server.AuthToken)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:7777")
	t.Setenv("GITCTX_DIR", "/env/repo")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7777", cfg.Server.Address)
	assert.Equal(t, "/env/repo", cfg.Extract.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:6666")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6666", cfg.Server.Address)
}

func TestLoad_UnknownLogLevel(t *testing.T) {
	_, err := Load(writeConfig(t, "log_level: verbose\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
