package gitparse

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

// DiffOptions narrows a diff query.
type DiffOptions struct {
	// Staged compares the index against HEAD instead of the work tree
	// against the index.
	Staged bool

	// ContextLines sets the unified context width.
	ContextLines int

	// StatsOnly skips patch parsing and reads numstat counters instead.
	StatsOnly bool

	// Paths restricts the diff to the given pathspecs.
	Paths []string
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Diff reads uncommitted changes as a structured patch. Totals are
// recomputed from per file counters, so they always agree.
func (p *Parser) Diff(ctx context.Context, opts DiffOptions) (model.ParsedDiff, error) {
	if err := validate.NonNegativeInt("context_lines", opts.ContextLines); err != nil {
		return model.ParsedDiff{}, err
	}
	for _, path := range opts.Paths {
		if err := validate.FilePath(path); err != nil {
			return model.ParsedDiff{}, err
		}
	}

	if opts.StatsOnly {
		return p.diffStats(ctx, opts)
	}

	args := []string{"diff"}
	if opts.Staged {
		args = append(args, "--cached")
	}
	args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}

	out, err := p.run(ctx, args...)
	if err != nil {
		return model.ParsedDiff{}, errm.Wrap(err, "failed to read diff")
	}

	files := parseDiffFiles(out)
	p.log.Debug("parsed diff", "files", len(files), "staged", opts.Staged)

	return model.ParsedDiff{Files: files, Stats: aggregateStats(files)}, nil
}

func (p *Parser) diffStats(ctx context.Context, opts DiffOptions) (model.ParsedDiff, error) {
	args := []string{"diff"}
	if opts.Staged {
		args = append(args, "--cached")
	}
	args = append(args, "--numstat")
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}

	out, err := p.run(ctx, args...)
	if err != nil {
		return model.ParsedDiff{}, errm.Wrap(err, "failed to read diff stats")
	}

	files := parseNumstat(out)
	return model.ParsedDiff{Files: files, Stats: aggregateStats(files)}, nil
}

func aggregateStats(files []model.DiffFile) model.DiffStats {
	stats := model.DiffStats{FilesChanged: len(files)}
	for _, f := range files {
		stats.Additions += f.Additions
		stats.Deletions += f.Deletions
	}
	return stats
}

// parseDiffFiles walks unified diff output as a small state machine: a
// "diff --git" line opens a file, metadata lines refine its status, hunk
// headers open hunks and everything else inside a hunk is a patch line.
func parseDiffFiles(out string) []model.DiffFile {
	if strings.TrimSpace(out) == "" {
		return nil
	}

	var (
		files   []model.DiffFile
		current *model.DiffFile
		hunk    *model.Hunk
	)

	flushHunk := func() {
		if current == nil || hunk == nil {
			return
		}
		current.Hunks = append(current.Hunks, *hunk)
		hunk = nil
	}
	flushFile := func() {
		if current == nil {
			return
		}
		flushHunk()
		files = append(files, *current)
		current = nil
	}

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.HasPrefix(line, "diff --git ") {
			flushFile()
			oldPath, newPath := parseGitHeaderPaths(strings.TrimPrefix(line, "diff --git "))
			current = &model.DiffFile{
				Path:   lang.Check(newPath, oldPath),
				Status: model.FileStatusModified,
			}
			continue
		}
		if current == nil {
			continue
		}

		// Metadata only precedes the first hunk of a file. Once a hunk is
		// open these prefixes are patch content, e.g. a deleted "-- init"
		// SQL comment reads as "--- init".
		if hunk == nil {
			switch {
			case strings.HasPrefix(line, "new file mode "):
				current.Status = model.FileStatusAdded
				continue
			case strings.HasPrefix(line, "deleted file mode "):
				current.Status = model.FileStatusDeleted
				continue
			case strings.HasPrefix(line, "rename from "):
				current.OldPath = unquotePath(strings.TrimPrefix(line, "rename from "))
				current.Status = model.FileStatusRenamed
				continue
			case strings.HasPrefix(line, "rename to "):
				current.Path = unquotePath(strings.TrimPrefix(line, "rename to "))
				current.Status = model.FileStatusRenamed
				continue
			case strings.HasPrefix(line, "similarity index "),
				strings.HasPrefix(line, "index "),
				strings.HasPrefix(line, "old mode "),
				strings.HasPrefix(line, "new mode "):
				continue
			case strings.HasPrefix(line, "Binary files "), strings.HasPrefix(line, "GIT binary patch"):
				current.IsBinary = true
				continue
			case strings.HasPrefix(line, "--- "):
				token := unquotePath(strings.TrimPrefix(line, "--- "))
				if token == "/dev/null" {
					current.Status = model.FileStatusAdded
				} else if current.Path == "" {
					current.Path = strings.TrimPrefix(token, "a/")
				}
				continue
			case strings.HasPrefix(line, "+++ "):
				token := unquotePath(strings.TrimPrefix(line, "+++ "))
				if token == "/dev/null" {
					current.Status = model.FileStatusDeleted
				} else if current.Path == "" {
					current.Path = strings.TrimPrefix(token, "b/")
				}
				continue
			}
		}

		if m := hunkHeader.FindStringSubmatch(line); m != nil {
			flushHunk()
			hunk = &model.Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
				Header:   line,
			}
			continue
		}
		if hunk == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			current.Additions++
		case strings.HasPrefix(line, "-"):
			current.Deletions++
		}
		hunk.Lines = append(hunk.Lines, line)
	}

	flushFile()
	return files
}

// parseGitHeaderPaths splits the `a/old b/new` pair of a diff --git line.
// Quoted paths with spaces fall through and get fixed up by the later
// ---/+++ or rename lines.
func parseGitHeaderPaths(rest string) (oldPath, newPath string) {
	i := strings.Index(rest, " b/")
	if i < 0 {
		return "", ""
	}
	return strings.TrimPrefix(rest[:i], "a/"), unquotePath(rest[i+3:])
}

// parseNumstat reads "added<TAB>deleted<TAB>path" lines, a dash marks a
// binary file with no line counts.
func parseNumstat(out string) []model.DiffFile {
	var files []model.DiffFile

	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		file := model.DiffFile{
			Path:   unquotePath(parts[2]),
			Status: model.FileStatusModified,
		}
		if parts[0] == "-" || parts[1] == "-" {
			file.IsBinary = true
		} else {
			file.Additions = atoiDefault(parts[0], 0)
			file.Deletions = atoiDefault(parts[1], 0)
		}

		files = append(files, file)
	}

	return files
}
