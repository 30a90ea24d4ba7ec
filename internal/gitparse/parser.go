package gitparse

import (
	"context"
	"strconv"
	"strings"

	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/model/interfaces"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

// Parser turns raw git output into typed snapshot values. Every invocation
// is fixed-shape, validated and issued through the runner.
type Parser struct {
	runner interfaces.GitRunner
	log    logze.Logger
}

// New creates a parser on top of a runner.
func New(runner interfaces.GitRunner) *Parser {
	return &Parser{
		runner: runner,
		log:    logze.With("component", "gitparse"),
	}
}

// Every vector goes through the validator before it reaches the runner,
// independently of the executor's own metacharacter scan.

func (p *Parser) run(ctx context.Context, args ...string) (string, error) {
	if err := validate.Args(args); err != nil {
		return "", err
	}
	return p.runner.Run(ctx, args...)
}

func (p *Parser) runLenient(ctx context.Context, args ...string) (string, error) {
	if err := validate.Args(args); err != nil {
		return "", err
	}
	return p.runner.RunLenient(ctx, args...)
}

func (p *Parser) runDetailed(ctx context.Context, args ...string) (model.CommandResult, error) {
	if err := validate.Args(args); err != nil {
		return model.CommandResult{}, err
	}
	return p.runner.RunDetailed(ctx, args...)
}

func splitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// unquotePath strips the C-style quoting git applies to paths with
// special characters.
func unquotePath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
