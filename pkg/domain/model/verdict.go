package model

import (
	"encoding/json"

	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

// Verdict is the outcome of a single risk assessment
type Verdict struct {
	// Prediction is the top-1 class. Escalation never changes it.
	Prediction        ClassLabel
	Confidence        float64
	InitialRisk       types.RiskLevel
	RiskLevel         types.RiskLevel
	CancerProbability float64
	Warning           string
}

// HasWarning reports whether the verdict carries a warning message
func (v *Verdict) HasWarning() bool {
	return v.Warning != ""
}

// VerdictBody is the wire form of a Verdict. Warning is nil when absent so it
// encodes as null.
type VerdictBody struct {
	RiskLevel         types.RiskLevel `json:"risk_level"`
	Confidence        float64         `json:"confidence"`
	Prediction        string          `json:"prediction"`
	Warning           *string         `json:"warning"`
	PredictionID      types.ClassID   `json:"prediction_id"`
	InitialRiskLevel  types.RiskLevel `json:"initial_risk_level"`
	CancerProbability float64         `json:"cancer_probability"`
}

// Body converts the verdict into its wire form
func (v Verdict) Body() VerdictBody {
	out := VerdictBody{
		RiskLevel:         v.RiskLevel,
		Confidence:        v.Confidence,
		Prediction:        v.Prediction.Name,
		PredictionID:      v.Prediction.ID,
		InitialRiskLevel:  v.InitialRisk,
		CancerProbability: v.CancerProbability,
	}
	if v.Warning != "" {
		w := v.Warning
		out.Warning = &w
	}
	return out
}

// MarshalJSON encodes the verdict with "warning" set to null when absent
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Body())
}
