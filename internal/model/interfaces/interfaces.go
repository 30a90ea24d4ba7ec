package interfaces

import (
	"context"
	"time"

	"github.com/maxbolgarin/gitctx/internal/model"
)

// GitRunner defines the safe subprocess boundary to the git binary.
// Arguments are always passed as a vector, never as a shell string.
type GitRunner interface {
	// Run executes git and fails with a sanitized error on non-zero exit
	Run(ctx context.Context, args ...string) (string, error)

	// RunLenient executes git and returns whatever stdout was produced,
	// tolerating a non-zero exit code
	RunLenient(ctx context.Context, args ...string) (string, error)

	// RunDetailed executes git and returns raw stdout, stderr and the exit
	// code without failing on non-zero exit, for callers that need to
	// distinguish "no results" from "command error"
	RunDetailed(ctx context.Context, args ...string) (model.CommandResult, error)
}

// ContextProvider defines the read-only query surface over one work tree.
type ContextProvider interface {
	GetContext(ctx context.Context, opts model.ContextOptions) (*model.GitContext, error)
	GetRepositoryInfo(ctx context.Context) (model.RepositoryInfo, error)
	GetCurrentBranch(ctx context.Context) (model.BranchInfo, error)
	GetStatus(ctx context.Context, opts model.ContextOptions) (model.GitStatus, error)
	GetChangedFiles(ctx context.Context, opts model.ContextOptions) ([]model.ChangedFile, error)

	// Commit queries
	GetRecentCommits(ctx context.Context, opts model.ContextOptions) ([]model.Commit, error)
	GetLatestCommit(ctx context.Context, opts model.ContextOptions) (*model.Commit, error)
	GetCommitsSince(ctx context.Context, since time.Time, opts model.ContextOptions) ([]model.Commit, error)

	// Diff queries
	GetDiff(ctx context.Context, staged bool, opts model.ContextOptions) (*model.ParsedDiff, error)
	GetDiffStats(ctx context.Context, staged bool) (model.DiffStats, error)
	GetDiffFileCount(ctx context.Context, staged bool) (int, error)

	// Predicates
	IsRepository(ctx context.Context) bool
	IsClean(ctx context.Context) (bool, error)
}
