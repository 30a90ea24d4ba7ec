package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/maxbolgarin/gitctx/internal/extractor"
	"github.com/maxbolgarin/gitctx/internal/gitexec"
	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/sanitize"
)

// Scanner discovers repositories under a workspace root and extracts a
// snapshot from each of them concurrently. A broken repository produces a
// per-repository error entry, never a failed scan.
type Scanner struct {
	cfg  Config
	pool *ants.Pool
	log  logze.Logger
}

// New creates a scanner with its own worker pool.
func New(cfg Config) (*Scanner, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "prepare config")
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create worker pool")
	}

	return &Scanner{
		cfg:  cfg,
		pool: pool,
		log:  logze.With("component", "scanner"),
	}, nil
}

// Close releases the worker pool.
func (s *Scanner) Close() {
	s.pool.Release()
}

// Scan walks the root, extracts every discovered repository and returns
// the aggregate report. Repositories keep their discovery order.
func (s *Scanner) Scan(ctx context.Context) (*model.WorkspaceReport, error) {
	timer := abstract.StartTimer()

	repos, err := s.discover()
	if err != nil {
		return nil, err
	}

	results := abstract.NewSafeMap[string, model.RepoReport]()

	var wg sync.WaitGroup
	for _, dir := range repos {
		wg.Add(1)
		dir := dir
		if err := s.pool.Submit(func() {
			defer wg.Done()
			results.Set(dir, s.scanRepo(ctx, dir))
		}); err != nil {
			wg.Done()
			results.Set(dir, model.RepoReport{Path: dir, Error: err.Error()})
		}
	}
	wg.Wait()

	report := &model.WorkspaceReport{
		Root:    s.cfg.Root,
		Repos:   make([]model.RepoReport, 0, len(repos)),
		Elapsed: timer.ElapsedTime().String(),
	}
	for _, dir := range repos {
		repo, ok := results.Lookup(dir)
		if !ok {
			continue
		}
		report.Repos = append(report.Repos, repo)
		report.Scanned++
		if repo.Error != "" {
			report.Failed++
		}
	}

	s.log.Info("workspace scan finished",
		"repos", report.Scanned,
		"failed", report.Failed,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

func (s *Scanner) scanRepo(ctx context.Context, dir string) model.RepoReport {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RepoTimeout)
	defer cancel()

	path := dir
	if s.cfg.Options.SanitizeForAI {
		path = sanitize.FilePath(dir)
	}

	ext, err := extractor.New(extractor.Config{Dir: dir, Options: s.cfg.Options}, gitexec.New(dir))
	if err != nil {
		return model.RepoReport{Path: path, Error: sanitize.ErrorText(err.Error())}
	}

	gc, err := ext.GetContext(ctx, s.cfg.Options)
	if err != nil {
		s.log.Warn("failed to extract repository", "path", path, "error", err)
		return model.RepoReport{Path: path, Error: sanitize.ErrorText(err.Error())}
	}

	return model.RepoReport{Path: path, Context: gc}
}

// discover walks the root looking for directories that carry a .git
// entry. It does not descend into found repositories or hidden
// directories and stops at the configured depth.
func (s *Scanner) discover() ([]string, error) {
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return nil, errm.Wrap(err, "failed to resolve workspace root")
	}

	maxSep := strings.Count(root, string(os.PathSeparator)) + s.cfg.MaxDepth

	var repos []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if _, statErr := os.Stat(filepath.Join(path, ".git")); statErr == nil {
			repos = append(repos, path)
			return fs.SkipDir
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if strings.Count(path, string(os.PathSeparator)) >= maxSep {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to walk workspace")
	}

	s.log.Debug("discovered repositories", "count", len(repos))

	return repos, nil
}
