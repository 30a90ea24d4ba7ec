package gitparse

import (
	"context"
	"strconv"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

// Branch reads the current branch together with its upstream tracking
// state. A detached HEAD is reported under the model.DetachedHead name,
// a branch without an upstream comes back with Tracking set to false.
func (p *Parser) Branch(ctx context.Context) (model.BranchInfo, error) {
	out, err := p.run(ctx, "branch", "--show-current")
	if err != nil {
		return model.BranchInfo{}, errm.Wrap(err, "failed to read current branch")
	}

	info := model.BranchInfo{
		Name: lang.Check(strings.TrimSpace(out), model.DetachedHead),
	}

	// Resolving the upstream fails with a nonzero exit when none is
	// configured, which is a normal state for local-only branches
	res, err := p.runDetailed(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return model.BranchInfo{}, errm.Wrap(err, "failed to resolve upstream")
	}
	if res.ExitCode != 0 {
		return info, nil
	}

	upstream := strings.TrimSpace(res.Stdout)
	if upstream == "" {
		return info, nil
	}
	info.Upstream = upstream
	info.Tracking = true

	ahead, behind, err := p.aheadBehind(ctx, upstream)
	if err != nil {
		return model.BranchInfo{}, err
	}
	info.Ahead, info.Behind = ahead, behind

	return info, nil
}

func (p *Parser) aheadBehind(ctx context.Context, upstream string) (ahead, behind int, err error) {
	if err := validate.BranchName(upstream); err != nil {
		return 0, 0, errm.Wrap(err, "unusable upstream name")
	}

	out, err := p.run(ctx, "rev-list", "--left-right", "--count", upstream+"...HEAD")
	if err != nil {
		return 0, 0, errm.Wrap(err, "failed to count ahead/behind")
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0, errm.New("unexpected rev-list output: %q", lang.TruncateString(out, 64))
	}

	// Left side counts commits only in the upstream, right side only in HEAD
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, errm.Wrap(err, "bad behind count")
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errm.Wrap(err, "bad ahead count")
	}

	return ahead, behind, nil
}
