package config

import "errors"

var (
	// ErrInvalidConfig marks a loaded configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a failure reading the YAML file or environment.
	ErrLoadConfig = errors.New("load config failed")
)
