package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// AssessmentID is the identifier of a stored assessment
type AssessmentID string

// NewAssessmentID generates a random assessment ID
func NewAssessmentID() AssessmentID {
	return AssessmentID(uuid.NewString())
}

// Validate checks that the ID is a UUID
func (id AssessmentID) Validate() error {
	if id == "" {
		return goerr.New("assessment ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "assessment ID must be a UUID", goerr.V("id", id))
	}
	return nil
}

// String returns the string representation of AssessmentID
func (id AssessmentID) String() string {
	return string(id)
}
