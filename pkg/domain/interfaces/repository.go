package interfaces

import "github.com/m-mizutani/goerr/v2"

// Repository defines the interface for data persistence
type Repository interface {
	Assessment() AssessmentRepository

	// Close releases backend resources
	Close() error
}

// ErrNotFound is returned by repositories when the requested record does not exist
var ErrNotFound = goerr.New("not found")
