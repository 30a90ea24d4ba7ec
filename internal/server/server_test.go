package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maxbolgarin/logze/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/gitctx/internal/model"
)

type fakeProvider struct {
	gc      *model.GitContext
	commits []model.Commit
	diff    *model.ParsedDiff
	stats   model.DiffStats
	err     error

	called     bool
	lastOpts   model.ContextOptions
	lastStaged bool
	lastSince  time.Time
	sinceUsed  bool
}

func (f *fakeProvider) GetContext(ctx context.Context, opts model.ContextOptions) (*model.GitContext, error) {
	f.called, f.lastOpts = true, opts
	return f.gc, f.err
}

func (f *fakeProvider) GetRepositoryInfo(ctx context.Context) (model.RepositoryInfo, error) {
	f.called = true
	if f.err != nil {
		return model.RepositoryInfo{}, f.err
	}
	return f.gc.Repository, nil
}

func (f *fakeProvider) GetCurrentBranch(ctx context.Context) (model.BranchInfo, error) {
	f.called = true
	if f.err != nil {
		return model.BranchInfo{}, f.err
	}
	return f.gc.Branch, nil
}

func (f *fakeProvider) GetStatus(ctx context.Context, opts model.ContextOptions) (model.GitStatus, error) {
	f.called, f.lastOpts = true, opts
	if f.err != nil {
		return model.GitStatus{}, f.err
	}
	return f.gc.Status, nil
}

func (f *fakeProvider) GetChangedFiles(ctx context.Context, opts model.ContextOptions) ([]model.ChangedFile, error) {
	f.called, f.lastOpts = true, opts
	return f.gc.ChangedFiles, f.err
}

func (f *fakeProvider) GetRecentCommits(ctx context.Context, opts model.ContextOptions) ([]model.Commit, error) {
	f.called, f.lastOpts = true, opts
	return f.commits, f.err
}

func (f *fakeProvider) GetLatestCommit(ctx context.Context, opts model.ContextOptions) (*model.Commit, error) {
	f.called, f.lastOpts = true, opts
	if len(f.commits) == 0 {
		return nil, f.err
	}
	return &f.commits[0], f.err
}

func (f *fakeProvider) GetCommitsSince(ctx context.Context, since time.Time, opts model.ContextOptions) ([]model.Commit, error) {
	f.called, f.lastOpts, f.lastSince, f.sinceUsed = true, opts, since, true
	return f.commits, f.err
}

func (f *fakeProvider) GetDiff(ctx context.Context, staged bool, opts model.ContextOptions) (*model.ParsedDiff, error) {
	f.called, f.lastStaged, f.lastOpts = true, staged, opts
	return f.diff, f.err
}

func (f *fakeProvider) GetDiffStats(ctx context.Context, staged bool) (model.DiffStats, error) {
	f.called, f.lastStaged = true, staged
	return f.stats, f.err
}

func (f *fakeProvider) GetDiffFileCount(ctx context.Context, staged bool) (int, error) {
	f.called, f.lastStaged = true, staged
	return f.stats.FilesChanged, f.err
}

func (f *fakeProvider) IsRepository(ctx context.Context) bool { return f.err == nil }

func (f *fakeProvider) IsClean(ctx context.Context) (bool, error) {
	return f.gc.Repository.IsClean, f.err
}

func populatedProvider() *fakeProvider {
	return &fakeProvider{
		gc: &model.GitContext{
			Repository: model.RepositoryInfo{Root: "/work/project", IsClean: false},
			Branch:     model.BranchInfo{Name: "main", Tracking: true, Ahead: 1},
			Status:     model.GitStatus{Modified: []string{"main.go"}},
		},
		commits: []model.Commit{{Subject: "Add feature", Hash: "abc"}},
		diff:    &model.ParsedDiff{Stats: model.DiffStats{FilesChanged: 1}},
		stats:   model.DiffStats{FilesChanged: 2, Additions: 5, Deletions: 1},
	}
}

func newTestServer(t *testing.T, provider *fakeProvider, cfg Config) *Server {
	t.Helper()
	require.NoError(t, cfg.PrepareAndValidate())
	return &Server{
		provider: provider,
		config:   cfg,
		log:      logze.With("module", "server"),
	}
}

func do(s *Server, handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.guard(handler)(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleContext(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleContext, http.MethodGet, "/api/v1/context?commits=5&untracked=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var gc model.GitContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gc))
	assert.Equal(t, "main", gc.Branch.Name)

	assert.Equal(t, 5, provider.lastOpts.MaxCommits)
	assert.False(t, provider.lastOpts.IncludeUntracked)
	assert.True(t, provider.lastOpts.SanitizeForAI, "defaults apply to omitted parameters")
}

// Every documented parameter name must actually reach the provider; a
// misspelled name silently falls back to the defaults, which is exactly the
// drift this pins down.
func TestParseOptions_DocumentedNames(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleContext, http.MethodGet,
		"/api/v1/context?untracked=false&commits=7&context_lines=1&raw=true")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, provider.lastOpts.IncludeUntracked)
	assert.Equal(t, 7, provider.lastOpts.MaxCommits)
	assert.Equal(t, 1, provider.lastOpts.DiffContextLines)
	assert.False(t, provider.lastOpts.SanitizeForAI, "raw=true disables sanitization")

	rec = do(s, s.handleContext, http.MethodGet, "/api/v1/context?raw=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, provider.lastOpts.SanitizeForAI)
}

func TestHandleContext_BadParameter(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleContext, http.MethodGet, "/api/v1/context?commits=lots")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeError(t, rec).Kind)
	assert.False(t, provider.called, "rejected input never reaches the provider")

	rec = do(s, s.handleContext, http.MethodGet, "/api/v1/context?commits=0")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{
			name: "outside repository is a conflict",
			err: &model.PreconditionError{
				CommandError: model.CommandError{Command: "rev-parse --show-toplevel", ExitCode: 128},
			},
			wantCode: http.StatusConflict,
			wantKind: "precondition",
		},
		{
			name:     "failed command is internal",
			err:      &model.CommandError{Command: "status --porcelain", ExitCode: 129},
			wantCode: http.StatusInternalServerError,
			wantKind: "command",
		},
		{
			name:     "unknown failure is internal",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantKind: "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := populatedProvider()
			provider.err = tt.err
			s := newTestServer(t, provider, Config{})

			rec := do(s, s.handleContext, http.MethodGet, "/api/v1/context")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, rec).Kind)
		})
	}
}

func TestGuard_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, populatedProvider(), Config{})

	rec := do(s, s.handleContext, http.MethodPost, "/api/v1/context")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGuard_Auth(t *testing.T) {
	s := newTestServer(t, populatedProvider(), Config{AuthToken: "sekrit"})

	rec := do(s, s.handleBranch, http.MethodGet, "/api/v1/branch")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/branch", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.guard(s.handleBranch)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/branch", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	s.guard(s.handleBranch)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRepository(t *testing.T) {
	s := newTestServer(t, populatedProvider(), Config{})

	rec := do(s, s.handleRepository, http.MethodGet, "/api/v1/repository")
	require.Equal(t, http.StatusOK, rec.Code)

	var info model.RepositoryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "/work/project", info.Root)
}

func TestHandleCommits(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleCommits, http.MethodGet, "/api/v1/commits?commits=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, provider.lastOpts.MaxCommits)
	assert.False(t, provider.sinceUsed)

	var commits []model.Commit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commits))
	require.Len(t, commits, 1)
	assert.Equal(t, "Add feature", commits[0].Subject)
}

func TestHandleCommits_Since(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleCommits, http.MethodGet, "/api/v1/commits?since=2024-03-01T00:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, provider.sinceUsed)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), provider.lastSince)

	rec = do(s, s.handleCommits, http.MethodGet, "/api/v1/commits?since=yesterday")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeError(t, rec).Kind)
}

func TestHandleDiff(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleDiff, http.MethodGet, "/api/v1/diff?staged=true&context_lines=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, provider.lastStaged)
	assert.Zero(t, provider.lastOpts.DiffContextLines)

	rec = do(s, s.handleDiff, http.MethodGet, "/api/v1/diff?staged=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDiffStats(t *testing.T) {
	provider := populatedProvider()
	s := newTestServer(t, provider, Config{})

	rec := do(s, s.handleDiffStats, http.MethodGet, "/api/v1/diff/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.DiffStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.FilesChanged)
	assert.Equal(t, 5, stats.Additions)
}

func TestConfig_PrepareAndValidate(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.PrepareAndValidate())
	assert.Equal(t, defaultAddress, cfg.Address)
	assert.Equal(t, defaultBasePath, cfg.BasePath)
	assert.Equal(t, defaultTimeout, cfg.Timeout)

	cfg = Config{BasePath: "api/v2/"}
	require.NoError(t, cfg.PrepareAndValidate())
	assert.Equal(t, "/api/v2", cfg.BasePath)

	cfg = Config{EnableHTTPS: true}
	assert.Error(t, cfg.PrepareAndValidate())
}
