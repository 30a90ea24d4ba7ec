package gitexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/model/interfaces"
	"github.com/maxbolgarin/gitctx/internal/sanitize"
)

const (
	gitBinary = "git"

	// MaxOutputSize bounds captured output per stream, a denial of service
	// ceiling for runaway subprocess output.
	MaxOutputSize = 10 * 1024 * 1024

	maxErrorOutputLength = 500
)

// Shell metacharacters re-checked here independently of the validate
// package, so a bypass of one layer is not a breach on its own.
const shellMetachars = ";|&$`><()"

// Subcommands that accept the "--" path separator convention.
var pathSeparatorCommands = map[string]bool{
	"diff": true,
	"log":  true,
	"show": true,
}

var errOutputLimit = errors.New("output size ceiling exceeded")

// Executor invokes the git binary as an argument vector with shell
// interpretation disabled, bound to one working directory.
type Executor struct {
	dir string
	log logze.Logger
}

var _ interfaces.GitRunner = (*Executor)(nil)

// New creates an executor running git inside dir.
func New(dir string) *Executor {
	return &Executor{
		dir: dir,
		log: logze.With("component", "gitexec"),
	}
}

// Run executes git and fails with a sanitized CommandError on non-zero exit.
func (e *Executor) Run(ctx context.Context, args ...string) (string, error) {
	res, err := e.exec(ctx, args)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", e.commandError(args, res)
	}
	return res.Stdout, nil
}

// RunLenient executes git and returns whatever stdout was produced,
// tolerating a non-zero exit code.
func (e *Executor) RunLenient(ctx context.Context, args ...string) (string, error) {
	res, err := e.exec(ctx, args)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// RunDetailed executes git and returns raw stdout, stderr and exit code
// without interpreting the exit code.
func (e *Executor) RunDetailed(ctx context.Context, args ...string) (model.CommandResult, error) {
	return e.exec(ctx, args)
}

func (e *Executor) exec(ctx context.Context, args []string) (model.CommandResult, error) {
	if len(args) == 0 {
		return model.CommandResult{}, &model.ValidationError{Schema: "args", Cause: "empty value"}
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, shellMetachars) {
			return model.CommandResult{}, &model.ValidationError{
				Schema: "args",
				Value:  lang.TruncateString(arg, 64),
				Cause:  "shell metacharacter",
			}
		}
	}
	args = ensurePathSeparator(args)

	cmd := exec.CommandContext(ctx, gitBinary, args...)
	cmd.Dir = e.dir
	stdout := &cappedBuffer{limit: MaxOutputSize}
	stderr := &cappedBuffer{limit: MaxOutputSize}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	e.log.Debug("running git", "args", strings.Join(args, " "))

	runErr := cmd.Run()
	res := model.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if stdout.exceeded || stderr.exceeded {
		return res, e.limitError(args)
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		return res, errm.Wrap(ctx.Err(), "git command canceled")
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, errm.New("failed to run git: %s", sanitize.ErrorText(runErr.Error()))
	}

	return res, nil
}

// limitError reports a subprocess that hit the output ceiling. The command
// text goes through the same sanitization as every other surfaced error.
func (e *Executor) limitError(args []string) error {
	return &model.CommandError{
		Command:  sanitize.ErrorText(strings.Join(args, " ")),
		ExitCode: -1,
		Output:   errOutputLimit.Error(),
	}
}

// commandError builds a sanitized CommandError, so subprocess failures
// never leak filesystem layout or credentials.
func (e *Executor) commandError(args []string, res model.CommandResult) error {
	out := strings.TrimSpace(res.Stderr)
	if out == "" {
		out = strings.TrimSpace(res.Stdout)
	}
	return &model.CommandError{
		Command:  sanitize.ErrorText(strings.Join(args, " ")),
		ExitCode: res.ExitCode,
		Output:   sanitize.ErrorText(lang.TruncateString(out, maxErrorOutputLength)),
	}
}

// ensurePathSeparator inserts "--" before trailing path-like arguments of
// diff, log and show, so a path can never be read as a flag or a revision.
// Parsers place revisions before flags, hence only paths trail the vector.
func ensurePathSeparator(args []string) []string {
	if len(args) < 2 || !pathSeparatorCommands[args[0]] {
		return args
	}
	for _, arg := range args {
		if arg == "--" {
			return args
		}
	}
	first := len(args)
	for i := len(args) - 1; i > 0; i-- {
		if !pathLike(args[i]) {
			break
		}
		first = i
	}
	if first == len(args) {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[:first]...)
	out = append(out, "--")
	out = append(out, args[first:]...)
	return out
}

// pathLike reports whether arg reads as a file path rather than a flag or
// a bare revision name.
func pathLike(arg string) bool {
	if arg == "" || strings.HasPrefix(arg, "-") {
		return false
	}
	return strings.ContainsAny(arg, "/.")
}

// cappedBuffer fails the copy once limit bytes were accepted, which
// terminates the subprocess instead of buffering unbounded output.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	exceeded bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.buf.Len()+len(p) > b.limit {
		b.exceeded = true
		room := b.limit - b.buf.Len()
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return room, errOutputLimit
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
