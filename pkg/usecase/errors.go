package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrAssessmentNotFound      = goerr.New("assessment not found")
	ErrClassifierNotConfigured = goerr.New("image classifier is not configured")
)

// Context keys for error values
const (
	AssessmentIDKey = "assessment_id"
	BatchIndexKey   = "batch_index"
)
