package gitparse

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/sanitize"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

const (
	logFieldSep  = "\x1f"
	logRecordSep = "\x1e"

	// Unit and record separators cannot appear in commit text, so the
	// format survives multiline bodies and exotic subjects.
	logFormat = "%H%x1f%h%x1f%an%x1f%ae%x1f%aI%x1f%s%x1f%b%x1e"
)

// LogOptions narrows a history query.
type LogOptions struct {
	// Limit caps the number of commits, must be positive.
	Limit int

	// Branch restricts the walk to the named ref instead of HEAD.
	Branch string

	// Since drops commits authored strictly before the given time.
	Since time.Time

	// Sanitize filters commit text right at construction. Leave it off
	// when the caller sanitizes the assembled snapshot as a whole.
	Sanitize bool
}

// Log reads recent history into structured records. An empty repository
// yields an empty result, not an error.
func (p *Parser) Log(ctx context.Context, opts LogOptions) ([]model.Commit, error) {
	if err := validate.PositiveInt("limit", opts.Limit); err != nil {
		return nil, err
	}

	args := []string{"log"}
	if opts.Branch != "" {
		if err := validate.BranchName(opts.Branch); err != nil {
			return nil, err
		}
		// The ref goes right after the subcommand so that only real
		// paths can ever trail the argument vector
		args = append(args, opts.Branch)
	}
	args = append(args, "--pretty=format:"+logFormat, "-n", strconv.Itoa(opts.Limit))
	if !opts.Since.IsZero() {
		args = append(args, "--since="+opts.Since.Format(time.RFC3339))
	}

	res, err := p.runDetailed(ctx, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		stderr := strings.ToLower(res.Stderr)
		if strings.Contains(stderr, "does not have any commits") ||
			strings.Contains(stderr, "bad default revision") {
			return nil, nil
		}
		return nil, &model.CommandError{
			Command:  "log",
			ExitCode: res.ExitCode,
			Output:   sanitize.ErrorText(lang.TruncateString(strings.TrimSpace(res.Stderr), 500)),
		}
	}

	commits := make([]model.Commit, 0, opts.Limit)
	for _, record := range strings.Split(res.Stdout, logRecordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		fields := strings.SplitN(record, logFieldSep, 7)
		if len(fields) != 7 {
			p.log.Warn("skipping malformed log record", "fields", len(fields))
			continue
		}

		commit := buildCommit(fields, opts.Sanitize)
		if !opts.Since.IsZero() && commit.Date.Before(opts.Since) {
			continue
		}
		commits = append(commits, commit)
	}

	p.log.Debug("parsed log", "commits", len(commits), "limit", opts.Limit)

	return commits, nil
}

func buildCommit(fields []string, sanitizeText bool) model.Commit {
	subject := strings.TrimSpace(fields[5])
	body := strings.TrimSpace(fields[6])

	message := subject
	if body != "" {
		message = subject + "\n\n" + body
	}

	commit := model.Commit{
		Hash:      strings.TrimSpace(fields[0]),
		ShortHash: strings.TrimSpace(fields[1]),
		Author:    strings.TrimSpace(fields[2]),
		Email:     strings.TrimSpace(fields[3]),
		Message:   message,
		Subject:   subject,
		Body:      body,
	}
	if date, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[4])); err == nil {
		commit.Date = date
	}

	if sanitizeText {
		sanitize.Commit(&commit)
	}

	return commit
}
