package model

const (
	DefaultMaxCommits       = 10
	DefaultDiffContextLines = 3
)

// ContextOptions controls a single extraction query.
type ContextOptions struct {
	// IncludeUntracked populates the untracked list of the status snapshot
	IncludeUntracked bool `json:"include_untracked" yaml:"include_untracked" env:"EXTRACT_INCLUDE_UNTRACKED"`

	// MaxCommits limits how many recent commits are loaded, must be positive
	MaxCommits int `json:"max_commits" yaml:"max_commits" env:"EXTRACT_MAX_COMMITS"`

	// DiffContextLines is the number of unchanged lines kept around each hunk
	DiffContextLines int `json:"diff_context_lines" yaml:"diff_context_lines" env:"EXTRACT_DIFF_CONTEXT_LINES"`

	// SanitizeForAI applies the AI safety sanitizer to the returned snapshot
	SanitizeForAI bool `json:"sanitize_for_ai" yaml:"sanitize_for_ai" env:"EXTRACT_SANITIZE_FOR_AI"`
}

// DefaultContextOptions returns the documented defaults: untracked files
// included, 10 commits, 3 diff context lines, sanitization enabled.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		IncludeUntracked: true,
		MaxCommits:       DefaultMaxCommits,
		DiffContextLines: DefaultDiffContextLines,
		SanitizeForAI:    true,
	}
}
