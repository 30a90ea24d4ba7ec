package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/gitctx/internal/extractor"
	"github.com/maxbolgarin/gitctx/internal/scanner"
	"github.com/maxbolgarin/gitctx/internal/server"
)

// Config represents the main application configuration
type Config struct {
	// LogLevel controls log verbosity: trace, debug, info, warn or error
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	Extract extractor.Config `yaml:"extract"`
	Scan    scanner.Config   `yaml:"scan"`
	Server  server.Config    `yaml:"server"`
}

// Load reads configuration from an optional YAML file with environment
// variables applied on top. An empty path means environment only.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, errm.Wrap(err, "failed to read config file")
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, errm.Wrap(err, "failed to read environment")
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var logLevels = map[string]struct{}{
	"":      {},
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks the top level settings. Component sections validate
// themselves when their components are built.
func (c *Config) Validate() error {
	if _, ok := logLevels[c.LogLevel]; !ok {
		return errm.Wrap(ErrUnknownLogLevel, "log_level "+c.LogLevel)
	}
	return nil
}
