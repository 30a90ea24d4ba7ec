package model

import "time"

// RepositoryInfo describes the repository a snapshot was taken from
type RepositoryInfo struct {
	Root      string `json:"root"`
	RemoteURL string `json:"remote_url,omitempty"`
	IsClean   bool   `json:"is_clean"`
}

// DetachedHead is the branch name reported when HEAD points at a commit
// instead of a branch.
const DetachedHead = "HEAD"

// BranchInfo describes the current branch and its upstream tracking state.
// When Tracking is false, Upstream is empty and both counts are zero.
type BranchInfo struct {
	Name     string `json:"name"`
	Upstream string `json:"upstream,omitempty"`
	Tracking bool   `json:"tracking"`
	Ahead    int    `json:"ahead"`
	Behind   int    `json:"behind"`
}

// GitStatus holds the working tree state as four disjoint path lists.
// A path appears in at most one list per snapshot.
type GitStatus struct {
	Staged    []string `json:"staged"`
	Modified  []string `json:"modified"`
	Untracked []string `json:"untracked"`
	Deleted   []string `json:"deleted"`
}

// IsEmpty reports whether the snapshot contains no entries at all.
func (s GitStatus) IsEmpty() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0 && len(s.Deleted) == 0
}

// Commit represents a single commit from the log.
// ShortHash is always a prefix of Hash.
type Commit struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date"`
	Message   string    `json:"message"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
}

// FileStatus classifies a path within a snapshot
type FileStatus string

const (
	FileStatusStaged    FileStatus = "staged"
	FileStatusModified  FileStatus = "modified"
	FileStatusUntracked FileStatus = "untracked"
	FileStatusDeleted   FileStatus = "deleted"

	// Diff entries only
	FileStatusAdded   FileStatus = "added"
	FileStatusRenamed FileStatus = "renamed"
)

// ChangedFile pairs a path with its working tree status
type ChangedFile struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
}

// DiffFile represents the parsed diff of a single file
type DiffFile struct {
	Path      string     `json:"path"`
	OldPath   string     `json:"old_path,omitempty"` // set for renames
	Status    FileStatus `json:"status"`
	IsBinary  bool       `json:"is_binary,omitempty"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Hunks     []Hunk     `json:"hunks,omitempty"`
}

// Hunk is one changed region of a unified diff.
// Lines keep their leading '+', '-' or ' ' marker.
type Hunk struct {
	OldStart int      `json:"old_start"`
	OldLines int      `json:"old_lines"`
	NewStart int      `json:"new_start"`
	NewLines int      `json:"new_lines"`
	Header   string   `json:"header"`
	Lines    []string `json:"lines"`
}

// DiffStats aggregates a parsed diff
type DiffStats struct {
	FilesChanged int `json:"files_changed"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

// ParsedDiff holds per-file diff entries together with aggregate stats.
// Stats always equals the aggregation of Files.
type ParsedDiff struct {
	Files []DiffFile `json:"files"`
	Stats DiffStats  `json:"stats"`
}

// GitContext is the aggregate snapshot returned to consumers.
// Every field is a value snapshot constructed fresh per query; nothing is
// shared between calls.
type GitContext struct {
	Repository    RepositoryInfo `json:"repository"`
	Branch        BranchInfo     `json:"branch"`
	Status        GitStatus      `json:"status"`
	RecentCommits []Commit       `json:"recent_commits"`
	Diff          ParsedDiff     `json:"diff"`
	ChangedFiles  []ChangedFile  `json:"changed_files"`
	ExtractedAt   time.Time      `json:"extracted_at"`
}

// CommandResult is the detailed executor return shape: raw output and exit
// code without any failure interpretation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
