package gitparse

import (
	"context"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/sanitize"
)

// Repository resolves the work tree root, the configured remote and the
// clean state in one snapshot. Failing to resolve the root means the
// directory is not a repository and every other query would fail too.
func (p *Parser) Repository(ctx context.Context) (model.RepositoryInfo, error) {
	root, err := p.Root(ctx)
	if err != nil {
		return model.RepositoryInfo{}, err
	}

	info := model.RepositoryInfo{Root: root}

	// A repository without a remote is a normal state, not an error
	remote, err := p.runLenient(ctx, "remote", "get-url", "origin")
	if err != nil {
		return model.RepositoryInfo{}, errm.Wrap(err, "failed to read remote url")
	}
	info.RemoteURL = strings.TrimSpace(remote)

	clean, err := p.IsClean(ctx)
	if err != nil {
		return model.RepositoryInfo{}, err
	}
	info.IsClean = clean

	return info, nil
}

// Root returns the absolute work tree root. Outside of a repository it
// returns a PreconditionError wrapping the failed probe.
func (p *Parser) Root(ctx context.Context) (string, error) {
	res, err := p.runDetailed(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errm.Wrap(err, "failed to probe repository")
	}
	if res.ExitCode != 0 {
		return "", &model.PreconditionError{
			CommandError: model.CommandError{
				Command:  "rev-parse --show-toplevel",
				ExitCode: res.ExitCode,
				Output:   sanitize.ErrorText(lang.TruncateString(strings.TrimSpace(res.Stderr), 500)),
			},
		}
	}

	root := strings.TrimSpace(res.Stdout)
	if root == "" {
		return "", &model.PreconditionError{
			CommandError: model.CommandError{
				Command:  "rev-parse --show-toplevel",
				ExitCode: res.ExitCode,
				Output:   "empty work tree root",
			},
		}
	}

	return root, nil
}

// IsRepository reports whether the runner's directory is inside a work tree.
func (p *Parser) IsRepository(ctx context.Context) bool {
	_, err := p.Root(ctx)
	return err == nil
}

// IsClean reports whether tracked files carry no staged or unstaged
// changes. Untracked files do not affect the result.
func (p *Parser) IsClean(ctx context.Context) (bool, error) {
	out, err := p.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, errm.Wrap(err, "failed to check working tree state")
	}
	return strings.TrimSpace(out) == "", nil
}
