package model

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any subprocess ran.
// It is always recoverable: correct the value and retry.
type ValidationError struct {
	Schema string // rule set that rejected the value: branch, path, hash, url, args, options
	Value  string // offending value, truncated by the validator
	Cause  string // human readable cause, e.g. "path traversal"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Schema, e.Value, e.Cause)
}

// CommandError reports a git invocation that exited non-zero.
// Command and Output are sanitized before construction and never leak
// home paths, temp session paths or credentials.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("git %s: exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("git %s: exit code %d: %s", e.Command, e.ExitCode, e.Output)
}

// PreconditionError reports a query that ran outside a git work tree.
// It is fatal for the whole aggregation and unwraps to its CommandError.
type PreconditionError struct {
	CommandError
	Dir string
}

func (e *PreconditionError) Error() string {
	if e.Dir == "" {
		return "not a git repository"
	}
	return fmt.Sprintf("not a git repository: %s", e.Dir)
}

func (e *PreconditionError) Unwrap() error {
	return &e.CommandError
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsCommandError reports whether err carries a CommandError,
// including the PreconditionError specialization.
func IsCommandError(err error) bool {
	var e *CommandError
	return errors.As(err, &e)
}

// IsPreconditionError reports whether err carries a PreconditionError.
func IsPreconditionError(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}
