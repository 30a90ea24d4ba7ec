package config

import "errors"

var (
	ErrUnknownLogLevel = errors.New("unknown log level")
)
