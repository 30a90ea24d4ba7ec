package extractor

import (
	"github.com/maxbolgarin/lang"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

// Config is the extractor configuration.
type Config struct {
	// Dir is the directory queried by all operations, the working
	// directory by default. It may point anywhere inside a work tree.
	Dir string `yaml:"dir" env:"GITCTX_DIR"`

	// Options are the default snapshot options applied when a caller
	// does not override them per query.
	Options model.ContextOptions `yaml:"options"`
}

// PrepareAndValidate fills defaults and checks the result.
func (c *Config) PrepareAndValidate() error {
	c.Dir = lang.Check(c.Dir, ".")
	if c.Options == (model.ContextOptions{}) {
		c.Options = model.DefaultContextOptions()
	}
	return validate.Options(c.Options)
}
