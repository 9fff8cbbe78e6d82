package interfaces

import "github.com/secmon-lab/dermarisk/pkg/domain/types"

// ListAssessmentOption is a functional option for filtering assessments in List
type ListAssessmentOption func(*listAssessmentConfig)

type listAssessmentConfig struct {
	riskLevel *types.RiskLevel
	limit     int
}

// WithRiskLevel filters assessments by final risk level
func WithRiskLevel(level types.RiskLevel) ListAssessmentOption {
	return func(c *listAssessmentConfig) {
		c.riskLevel = &level
	}
}

// WithLimit caps the number of returned assessments. Zero or less means no limit.
func WithLimit(limit int) ListAssessmentOption {
	return func(c *listAssessmentConfig) {
		c.limit = limit
	}
}

// BuildListAssessmentConfig builds a listAssessmentConfig from options
func BuildListAssessmentConfig(opts ...ListAssessmentOption) *listAssessmentConfig {
	cfg := &listAssessmentConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// RiskLevel returns the risk level filter value, or nil if not set
func (c *listAssessmentConfig) RiskLevel() *types.RiskLevel {
	return c.riskLevel
}

// Limit returns the limit, 0 when not set
func (c *listAssessmentConfig) Limit() int {
	return c.limit
}
