package model

// RepoReport is the scanner result for a single discovered repository.
// Exactly one of Context and Error is set.
type RepoReport struct {
	Path    string      `json:"path"`
	Context *GitContext `json:"context,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WorkspaceReport aggregates one scan over a workspace root.
type WorkspaceReport struct {
	Root    string       `json:"root"`
	Repos   []RepoReport `json:"repos"`
	Scanned int          `json:"scanned"`
	Failed  int          `json:"failed"`
	Elapsed string       `json:"elapsed"`
}
