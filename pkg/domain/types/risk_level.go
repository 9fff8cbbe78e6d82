package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// RiskLevel is an ordered risk category. The zero value is not a valid level.
type RiskLevel int

const (
	RiskLevelLow RiskLevel = iota + 1
	RiskLevelMedium
	RiskLevelHigh
)

// AllRiskLevels returns all valid risk levels in ascending order
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
	}
}

// IsValid checks if the risk level is one of the defined levels
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh:
		return true
	default:
		return false
	}
}

// Escalate returns the higher of r and to. A risk level never moves down.
func (r RiskLevel) Escalate(to RiskLevel) RiskLevel {
	if to > r {
		return to
	}
	return r
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "low"
	case RiskLevelMedium:
		return "medium"
	case RiskLevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "low":
		return RiskLevelLow, nil
	case "medium":
		return RiskLevelMedium, nil
	case "high":
		return RiskLevelHigh, nil
	default:
		return 0, goerr.New("invalid risk level", goerr.V("risk_level", s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (r RiskLevel) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, goerr.New("invalid risk level", goerr.V("risk_level", int(r)))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *RiskLevel) UnmarshalText(data []byte) error {
	level, err := ParseRiskLevel(string(data))
	if err != nil {
		return err
	}
	*r = level
	return nil
}
