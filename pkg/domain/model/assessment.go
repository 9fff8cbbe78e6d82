package model

import (
	"time"

	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

// AssessmentSource tells how the probability vector of an assessment was obtained
type AssessmentSource string

const (
	AssessmentSourceProbabilities AssessmentSource = "probabilities"
	AssessmentSourceImage         AssessmentSource = "image"
)

// Assessment is a stored verdict together with the vector it was computed from
type Assessment struct {
	ID            types.AssessmentID
	Verdict       Verdict
	Probabilities ProbabilityVector
	Source        AssessmentSource
	CreatedAt     time.Time
}
