package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/gitctx/internal/model"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	gitIn(t, dir, "init", "-q")
	gitIn(t, dir, "config", "user.email", "dev@example.com")
	gitIn(t, dir, "config", "user.name", "Dev")
	gitIn(t, dir, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	gitIn(t, dir, "add", ".")
	gitIn(t, dir, "commit", "-q", "-m", "init")
}

func TestDiscover(t *testing.T) {
	ws := t.TempDir()
	for _, dir := range []string{
		filepath.Join(ws, "alpha", ".git"),
		filepath.Join(ws, "nested", "beta", ".git"),
		filepath.Join(ws, ".hidden", "gamma", ".git"),
		filepath.Join(ws, "plain"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	s, err := New(Config{Root: ws})
	require.NoError(t, err)
	defer s.Close()

	repos, err := s.discover()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(ws, "alpha"),
		filepath.Join(ws, "nested", "beta"),
	}, repos, "hidden trees are skipped, repositories are not descended into")
}

func TestDiscover_DepthBound(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "alpha", ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "nested", "beta", ".git"), 0o755))

	s, err := New(Config{Root: ws, MaxDepth: 1})
	require.NoError(t, err)
	defer s.Close()

	repos, err := s.discover()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(ws, "alpha")}, repos)
}

func TestScan(t *testing.T) {
	requireGit(t)

	ws := t.TempDir()
	initRepo(t, filepath.Join(ws, "alpha"))
	initRepo(t, filepath.Join(ws, "beta"))

	// A .git entry that is not a usable repository
	broken := filepath.Join(ws, "broken")
	require.NoError(t, os.MkdirAll(filepath.Join(broken, ".git"), 0o755))

	opts := model.DefaultContextOptions()
	opts.SanitizeForAI = false

	s, err := New(Config{Root: ws, Options: opts})
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Failed)
	assert.NotEmpty(t, report.Elapsed)
	require.Len(t, report.Repos, 3)

	byPath := map[string]model.RepoReport{}
	for _, repo := range report.Repos {
		byPath[repo.Path] = repo
	}

	alpha := byPath[filepath.Join(ws, "alpha")]
	require.NotNil(t, alpha.Context, "healthy repository yields a snapshot")
	assert.Empty(t, alpha.Error)
	assert.Len(t, alpha.Context.RecentCommits, 1)

	brokenRepo := byPath[broken]
	assert.Nil(t, brokenRepo.Context)
	assert.NotEmpty(t, brokenRepo.Error, "broken repository fails alone, not the scan")
}

func TestScan_EmptyWorkspace(t *testing.T) {
	s, err := New(Config{Root: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
	assert.Empty(t, report.Repos)
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.PrepareAndValidate())

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, defaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, defaultWorkers, cfg.Workers)
	assert.Equal(t, defaultRepoTimeout, cfg.RepoTimeout)
	assert.Equal(t, model.DefaultContextOptions(), cfg.Options)
}

func TestConfig_RejectsNegativeDepth(t *testing.T) {
	cfg := Config{MaxDepth: -1}
	assert.Error(t, cfg.PrepareAndValidate())
}
