package validate

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/lang"
)

// Failure causes carried inside model.ValidationError.
const (
	CauseEmpty          = "empty value"
	CauseLengthExceeded = "length exceeded"
	CauseInvalidFormat  = "invalid format"
	CausePathTraversal  = "path traversal"
	CauseFlagInjection  = "flag injection"
	CauseNullByte       = "null byte"
	CauseAbsolutePath   = "absolute path"
	CauseShellMetachar  = "shell metacharacter"
	CauseBadScheme      = "unsupported protocol"
	CauseNotPositive    = "must be positive"
	CauseNegative       = "must be non-negative"
)

const (
	maxBranchNameLength = 255
	maxErrorValueLength = 64

	// Metacharacter set scanned in command argument vectors. Matching any
	// of these fails the whole vector.
	shellMetachars = ";|&$`><()"
)

var (
	branchNameChars = regexp.MustCompile(`^[a-zA-Z0-9/_.\-]+$`)
	commitHashExpr  = regexp.MustCompile(`^([0-9a-f]{40}|[0-9a-f]{64})$`)
	shortHashExpr   = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
	remoteScheme    = regexp.MustCompile(`^(https|http|ssh|file)://`)
	scpStyleRemote  = regexp.MustCompile(`^[a-zA-Z0-9._\-]+@[a-zA-Z0-9._\-]+:`)
)

// BranchName validates a user supplied branch or ref name: non-empty, at
// most 255 characters, charset limited to alphanumerics and '/', '_', '-',
// '.', no consecutive dots, no trailing '.lock'. The whitelist also excludes
// spaces and every shell metacharacter.
func BranchName(name string) error {
	if name == "" {
		return failed("branch", name, CauseEmpty)
	}
	if len(name) > maxBranchNameLength {
		return failed("branch", name, CauseLengthExceeded)
	}
	if !branchNameChars.MatchString(name) {
		return failed("branch", name, CauseInvalidFormat)
	}
	if strings.Contains(name, "..") {
		return failed("branch", name, CauseInvalidFormat)
	}
	if strings.HasSuffix(name, ".lock") {
		return failed("branch", name, CauseInvalidFormat)
	}
	return nil
}

// FilePath validates a repository relative path argument: non-empty, no
// absolute paths, no '..' traversal segments, no leading '-' and no
// embedded null bytes.
func FilePath(path string) error {
	if path == "" {
		return failed("path", path, CauseEmpty)
	}
	if strings.ContainsRune(path, 0) {
		return failed("path", path, CauseNullByte)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return failed("path", path, CauseAbsolutePath)
	}
	if strings.HasPrefix(path, "-") {
		return failed("path", path, CauseFlagInjection)
	}
	for _, segment := range strings.FieldsFunc(path, isPathSeparator) {
		if segment == ".." {
			return failed("path", path, CausePathTraversal)
		}
	}
	return nil
}

// CommitHash validates a full commit hash: exactly 40 (SHA-1) or 64
// (SHA-256) lowercase hex characters.
func CommitHash(hash string) error {
	if hash == "" {
		return failed("hash", hash, CauseEmpty)
	}
	if !commitHashExpr.MatchString(hash) {
		return failed("hash", hash, CauseInvalidFormat)
	}
	return nil
}

// ShortCommitHash validates an abbreviated commit hash of 7 to 40 lowercase
// hex characters.
func ShortCommitHash(hash string) error {
	if hash == "" {
		return failed("hash", hash, CauseEmpty)
	}
	if !shortHashExpr.MatchString(hash) {
		return failed("hash", hash, CauseInvalidFormat)
	}
	return nil
}

// RemoteURL validates a remote reference: https, http, ssh or file scheme,
// or the SCP-style user@host:path form. Any other scheme is rejected.
func RemoteURL(url string) error {
	if url == "" {
		return failed("url", url, CauseEmpty)
	}
	if remoteScheme.MatchString(url) {
		return nil
	}
	if scpStyleRemote.MatchString(url) {
		return nil
	}
	return failed("url", url, CauseBadScheme)
}

// PositiveInt validates an integer option that must be strictly positive.
func PositiveInt(name string, v int) error {
	if v <= 0 {
		return failed(name, strconv.Itoa(v), CauseNotPositive)
	}
	return nil
}

// NonNegativeInt validates an integer option that may be zero.
func NonNegativeInt(name string, v int) error {
	if v < 0 {
		return failed(name, strconv.Itoa(v), CauseNegative)
	}
	return nil
}

// Options validates a query option bundle.
func Options(opts model.ContextOptions) error {
	if err := PositiveInt("max_commits", opts.MaxCommits); err != nil {
		return err
	}
	if err := NonNegativeInt("diff_context_lines", opts.DiffContextLines); err != nil {
		return err
	}
	return nil
}

// Args scans a command argument vector for shell metacharacters.
// A match in any element fails the whole vector.
func Args(args []string) error {
	for _, arg := range args {
		if strings.ContainsAny(arg, shellMetachars) {
			return failed("args", arg, CauseShellMetachar)
		}
	}
	return nil
}

func failed(schema, value, cause string) error {
	return &model.ValidationError{
		Schema: schema,
		Value:  lang.TruncateString(value, maxErrorValueLength),
		Cause:  cause,
	}
}

func isPathSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
