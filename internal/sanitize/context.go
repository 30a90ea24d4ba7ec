package sanitize

import "github.com/maxbolgarin/gitctx/internal/model"

// Context sanitizes every string bearing field of a GitContext in place:
// repository root and remote URL, commit authors and messages, status and
// changed file paths, diff file paths. Numeric fields stay untouched.
func Context(gc *model.GitContext) {
	if gc == nil {
		return
	}
	gc.Repository.Root = FilePath(gc.Repository.Root)
	gc.Repository.RemoteURL = RemoteURL(gc.Repository.RemoteURL)

	for i := range gc.RecentCommits {
		Commit(&gc.RecentCommits[i])
	}

	paths(gc.Status.Staged)
	paths(gc.Status.Modified)
	paths(gc.Status.Untracked)
	paths(gc.Status.Deleted)

	for i := range gc.ChangedFiles {
		gc.ChangedFiles[i].Path = FilePath(gc.ChangedFiles[i].Path)
	}

	Diff(&gc.Diff)
}

// Diff sanitizes the file paths of a parsed diff in place. Counters and
// patch lines stay untouched.
func Diff(d *model.ParsedDiff) {
	if d == nil {
		return
	}
	for i := range d.Files {
		d.Files[i].Path = FilePath(d.Files[i].Path)
		d.Files[i].OldPath = FilePath(d.Files[i].OldPath)
	}
}

// Commit sanitizes the author and message fields of a single commit.
func Commit(c *model.Commit) {
	if c == nil {
		return
	}
	c.Author = Message(c.Author)
	c.Email = Message(c.Email)
	c.Message = Message(c.Message)
	c.Subject = Message(c.Subject)
	c.Body = Message(c.Body)
}

func paths(list []string) {
	for i := range list {
		list[i] = FilePath(list[i])
	}
}
