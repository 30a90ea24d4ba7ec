package gitparse

import (
	"context"
	"strings"

	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/gitctx/internal/model"
)

// Status parses the porcelain short format into four disjoint lists.
func (p *Parser) Status(ctx context.Context, includeUntracked bool) (model.GitStatus, error) {
	args := []string{"status", "--porcelain"}
	if !includeUntracked {
		args = append(args, "--untracked-files=no")
	}

	out, err := p.run(ctx, args...)
	if err != nil {
		return model.GitStatus{}, errm.Wrap(err, "failed to read status")
	}

	status := parseStatus(out)
	p.log.Debug("parsed status",
		"staged", len(status.Staged),
		"modified", len(status.Modified),
		"untracked", len(status.Untracked),
		"deleted", len(status.Deleted),
	)

	return status, nil
}

// parseStatus classifies each XY entry into exactly one list. Deletion in
// either column wins over everything but untracked, then the index column
// wins over the work tree column, so a file both staged and modified is
// reported as staged.
func parseStatus(out string) model.GitStatus {
	var status model.GitStatus

	for _, line := range splitLines(out) {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])

		// Rename entries carry both paths, keep the new one
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		path = unquotePath(path)

		switch {
		case code == "??":
			status.Untracked = append(status.Untracked, path)
		case code[0] == 'D' || code[1] == 'D':
			status.Deleted = append(status.Deleted, path)
		case code[0] != ' ' && code[0] != '?':
			status.Staged = append(status.Staged, path)
		default:
			status.Modified = append(status.Modified, path)
		}
	}

	return status
}
