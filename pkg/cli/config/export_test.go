package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewClassifierForTest creates a Classifier config for testing purposes
func NewClassifierForTest(endpoint string, timeout time.Duration) *Classifier {
	return &Classifier{endpoint: endpoint, timeout: timeout}
}

// NewTaxonomyForTest creates a Taxonomy config for testing purposes
func NewTaxonomyForTest(path string) *Taxonomy {
	return &Taxonomy{path: path}
}
