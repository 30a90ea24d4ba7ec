package extractor

import (
	"context"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/gitctx/internal/gitparse"
	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/model/interfaces"
	"github.com/maxbolgarin/gitctx/internal/sanitize"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

// Extractor assembles structured repository snapshots out of read-only
// queries. It keeps no repository state between calls, every snapshot is
// built fresh from the working tree.
type Extractor struct {
	cfg    Config
	parser *gitparse.Parser
	log    logze.Logger
}

var _ interfaces.ContextProvider = (*Extractor)(nil)

// New creates an extractor on top of a runner.
func New(cfg Config, runner interfaces.GitRunner) (*Extractor, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "prepare config")
	}
	return &Extractor{
		cfg:    cfg,
		parser: gitparse.New(runner),
		log:    logze.With("component", "extractor"),
	}, nil
}

// Options returns the configured default snapshot options.
func (e *Extractor) Options() model.ContextOptions {
	return e.cfg.Options
}

// GetContext builds the full snapshot: repository, branch, status, recent
// commits, the unstaged diff and the flattened changed file list. When
// the repository probe fails nothing else runs and no partial snapshot
// is returned.
func (e *Extractor) GetContext(ctx context.Context, opts model.ContextOptions) (*model.GitContext, error) {
	if err := validate.Options(opts); err != nil {
		return nil, err
	}

	timer := abstract.StartTimer()

	repo, err := e.parser.Repository(ctx)
	if err != nil {
		return nil, err
	}
	branch, err := e.parser.Branch(ctx)
	if err != nil {
		return nil, err
	}
	status, err := e.parser.Status(ctx, opts.IncludeUntracked)
	if err != nil {
		return nil, err
	}
	commits, err := e.parser.Log(ctx, gitparse.LogOptions{Limit: opts.MaxCommits})
	if err != nil {
		return nil, err
	}
	diff, err := e.parser.Diff(ctx, gitparse.DiffOptions{ContextLines: opts.DiffContextLines})
	if err != nil {
		return nil, err
	}

	gc := &model.GitContext{
		Repository:    repo,
		Branch:        branch,
		Status:        status,
		RecentCommits: commits,
		Diff:          diff,
		ChangedFiles:  flattenStatus(status),
		ExtractedAt:   time.Now().UTC(),
	}

	// One sanitization pass over the assembled snapshot, so no field
	// goes through the filters twice
	if opts.SanitizeForAI {
		sanitize.Context(gc)
	}

	e.log.Debug("extracted context",
		"elapsed", timer.ElapsedTime().String(),
		"branch", gc.Branch.Name,
		"changed_files", len(gc.ChangedFiles),
		"commits", len(gc.RecentCommits),
	)

	return gc, nil
}

// GetRepositoryInfo resolves the work tree root, remote and clean state.
func (e *Extractor) GetRepositoryInfo(ctx context.Context) (model.RepositoryInfo, error) {
	return e.parser.Repository(ctx)
}

// GetCurrentBranch reads the branch and its upstream tracking state.
func (e *Extractor) GetCurrentBranch(ctx context.Context) (model.BranchInfo, error) {
	return e.parser.Branch(ctx)
}

// GetStatus reads the working tree state.
func (e *Extractor) GetStatus(ctx context.Context, opts model.ContextOptions) (model.GitStatus, error) {
	return e.parser.Status(ctx, opts.IncludeUntracked)
}

// GetChangedFiles flattens a single status snapshot into path and status
// pairs, staged entries first.
func (e *Extractor) GetChangedFiles(ctx context.Context, opts model.ContextOptions) ([]model.ChangedFile, error) {
	status, err := e.parser.Status(ctx, opts.IncludeUntracked)
	if err != nil {
		return nil, err
	}
	return flattenStatus(status), nil
}

// GetRecentCommits reads up to MaxCommits from history.
func (e *Extractor) GetRecentCommits(ctx context.Context, opts model.ContextOptions) ([]model.Commit, error) {
	return e.parser.Log(ctx, gitparse.LogOptions{
		Limit:    opts.MaxCommits,
		Sanitize: opts.SanitizeForAI,
	})
}

// GetLatestCommit returns the newest commit, or nil for an empty history.
func (e *Extractor) GetLatestCommit(ctx context.Context, opts model.ContextOptions) (*model.Commit, error) {
	commits, err := e.parser.Log(ctx, gitparse.LogOptions{Limit: 1, Sanitize: opts.SanitizeForAI})
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}
	return &commits[0], nil
}

// GetCommitsSince reads commits authored at or after the given time.
func (e *Extractor) GetCommitsSince(ctx context.Context, since time.Time, opts model.ContextOptions) ([]model.Commit, error) {
	return e.parser.Log(ctx, gitparse.LogOptions{
		Limit:    opts.MaxCommits,
		Since:    since,
		Sanitize: opts.SanitizeForAI,
	})
}

// GetDiff reads uncommitted changes, staged or unstaged.
func (e *Extractor) GetDiff(ctx context.Context, staged bool, opts model.ContextOptions) (*model.ParsedDiff, error) {
	diff, err := e.parser.Diff(ctx, gitparse.DiffOptions{
		Staged:       staged,
		ContextLines: opts.DiffContextLines,
	})
	if err != nil {
		return nil, err
	}
	if opts.SanitizeForAI {
		sanitize.Diff(&diff)
	}
	return &diff, nil
}

// GetDiffStats reads change counters without parsing patch text.
func (e *Extractor) GetDiffStats(ctx context.Context, staged bool) (model.DiffStats, error) {
	diff, err := e.parser.Diff(ctx, gitparse.DiffOptions{Staged: staged, StatsOnly: true})
	if err != nil {
		return model.DiffStats{}, err
	}
	return diff.Stats, nil
}

// GetDiffFileCount reports how many files carry uncommitted changes.
func (e *Extractor) GetDiffFileCount(ctx context.Context, staged bool) (int, error) {
	stats, err := e.GetDiffStats(ctx, staged)
	if err != nil {
		return 0, err
	}
	return stats.FilesChanged, nil
}

// IsRepository reports whether the directory is inside a work tree.
func (e *Extractor) IsRepository(ctx context.Context) bool {
	return e.parser.IsRepository(ctx)
}

// IsClean reports whether tracked files carry no uncommitted changes.
func (e *Extractor) IsClean(ctx context.Context) (bool, error) {
	return e.parser.IsClean(ctx)
}

func flattenStatus(status model.GitStatus) []model.ChangedFile {
	files := make([]model.ChangedFile, 0,
		len(status.Staged)+len(status.Modified)+len(status.Untracked)+len(status.Deleted))

	for _, p := range status.Staged {
		files = append(files, model.ChangedFile{Path: p, Status: model.FileStatusStaged})
	}
	for _, p := range status.Modified {
		files = append(files, model.ChangedFile{Path: p, Status: model.FileStatusModified})
	}
	for _, p := range status.Untracked {
		files = append(files, model.ChangedFile{Path: p, Status: model.FileStatusUntracked})
	}
	for _, p := range status.Deleted {
		files = append(files, model.ChangedFile{Path: p, Status: model.FileStatusDeleted})
	}

	return files
}
