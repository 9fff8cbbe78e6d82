package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidInput is returned when a probability vector cannot be assessed
	ErrInvalidInput = goerr.New("invalid input")

	// ErrInvalidConfiguration is returned when a taxonomy is incomplete or inconsistent.
	// It is a startup error and never produced per request.
	ErrInvalidConfiguration = goerr.New("invalid configuration")
)

// Context keys for error values
const (
	ClassIDKey    = "class_id"
	IndexKey      = "index"
	ValueKey      = "value"
	ExpectedKey   = "expected"
	ActualKey     = "actual"
	RiskLevelKey  = "risk_level"
	ThresholdKey  = "threshold"
	AssessmentKey = "assessment_id"
)
