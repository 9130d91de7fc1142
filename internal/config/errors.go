package config

import (
	"errors"
)

// Sentinel errors for configuration loading, matchable with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
