package scanner

import (
	"time"

	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

const (
	defaultMaxDepth    = 3
	defaultWorkers     = 8
	defaultRepoTimeout = 30 * time.Second
)

// Config is the workspace scanner configuration.
type Config struct {
	// Root is the workspace directory to walk.
	Root string `yaml:"root" env:"SCAN_ROOT"`

	// MaxDepth bounds how deep below the root the walk descends.
	MaxDepth int `yaml:"max_depth" env:"SCAN_MAX_DEPTH"`

	// Workers caps how many repositories are extracted at once.
	Workers int `yaml:"workers" env:"SCAN_WORKERS"`

	// RepoTimeout bounds the extraction of a single repository, so one
	// huge or wedged repository cannot stall the whole scan.
	RepoTimeout time.Duration `yaml:"repo_timeout" env:"SCAN_REPO_TIMEOUT"`

	// Options are applied to every extracted snapshot.
	Options model.ContextOptions `yaml:"options"`
}

// PrepareAndValidate fills defaults and checks the result.
func (c *Config) PrepareAndValidate() error {
	c.Root = lang.Check(c.Root, ".")
	c.MaxDepth = lang.Check(c.MaxDepth, defaultMaxDepth)
	c.Workers = lang.Check(c.Workers, defaultWorkers)
	c.RepoTimeout = lang.Check(c.RepoTimeout, defaultRepoTimeout)
	if c.Options == (model.ContextOptions{}) {
		c.Options = model.DefaultContextOptions()
	}

	if err := validate.PositiveInt("max_depth", c.MaxDepth); err != nil {
		return err
	}
	if err := validate.PositiveInt("workers", c.Workers); err != nil {
		return err
	}
	return validate.Options(c.Options)
}
