package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
	ErrInvalidBackend   = goerr.New("invalid repository backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	LabelIndexKey = "label_index"
	LabelIDKey    = "label_id"
)
