// Package risk turns classifier probability vectors into risk verdicts.
//
// The decision only ever moves a verdict toward high risk: a confidence shortfall
// escalates one level, and a significant summed probability over cancer classes
// forces high. No rule lowers the risk level of the top-1 class.
package risk

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

// Warning messages attached to escalated verdicts
const (
	WarningLowConfidenceBenign = "Low confidence in benign classification. Consult a healthcare provider."
	WarningLowConfidenceMedium = "Low confidence in medium risk classification. Consult a healthcare provider immediately."
	WarningMalignancy          = "Multiple cancer types detected with significant probability. Consult a healthcare provider immediately."
)

// Engine assesses probability vectors against a fixed taxonomy.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	taxonomy *model.Taxonomy
}

// New creates an Engine. The taxonomy is already validated by model.NewTaxonomy.
func New(taxonomy *model.Taxonomy) *Engine {
	return &Engine{taxonomy: taxonomy}
}

// Taxonomy returns the taxonomy the engine evaluates against
func (e *Engine) Taxonomy() *model.Taxonomy {
	return e.taxonomy
}

// Assess returns the verdict for probs. It fails with model.ErrInvalidInput when
// the vector does not fit the taxonomy.
func (e *Engine) Assess(probs model.ProbabilityVector) (*model.Verdict, error) {
	if err := probs.Validate(e.taxonomy.Len()); err != nil {
		return nil, goerr.Wrap(err, "rejected probability vector")
	}

	idx, confidence := probs.ArgMax()
	label := e.taxonomy.Label(idx)
	level, warning := e.escalateOnLowConfidence(label.Risk, confidence)

	cancerProb := probs.SumAt(e.taxonomy.CancerIndices())
	if cancerProb > e.taxonomy.MalignancyThreshold() && level != types.RiskLevelHigh {
		level = level.Escalate(types.RiskLevelHigh)
		warning = WarningMalignancy
	}

	return &model.Verdict{
		Prediction:        label,
		Confidence:        confidence,
		InitialRisk:       label.Risk,
		RiskLevel:         level,
		CancerProbability: cancerProb,
		Warning:           warning,
	}, nil
}

func (e *Engine) escalateOnLowConfidence(initial types.RiskLevel, confidence float64) (types.RiskLevel, string) {
	if confidence >= e.taxonomy.Threshold(initial) {
		return initial, ""
	}

	switch initial {
	case types.RiskLevelLow:
		return initial.Escalate(types.RiskLevelMedium), WarningLowConfidenceBenign
	case types.RiskLevelMedium:
		return initial.Escalate(types.RiskLevelHigh), WarningLowConfidenceMedium
	default:
		// already at the ceiling
		return initial, ""
	}
}
