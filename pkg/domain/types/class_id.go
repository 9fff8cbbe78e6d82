package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ClassID identifies one condition category the classifier can output
type ClassID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the ClassID is valid
func (c ClassID) Validate() error {
	if c == "" {
		return goerr.New("class ID cannot be empty")
	}
	if !idPattern.MatchString(string(c)) {
		return goerr.New("class ID must be lowercase alphanumeric with hyphens", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of ClassID
func (c ClassID) String() string {
	return string(c)
}
