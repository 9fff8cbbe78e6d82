package risk_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"github.com/secmon-lab/dermarisk/pkg/service/risk"
)

// Class indices of the default taxonomy
const (
	idxAKIEC = 0
	idxBCC   = 1
	idxNV    = 4
	idxVASC  = 5
	idxMEL   = 6
)

func TestEngine_Assess_Scenarios(t *testing.T) {
	engine := risk.New(model.DefaultTaxonomy())

	tests := []struct {
		name        string
		probs       model.ProbabilityVector
		wantIdx     int
		wantInitial types.RiskLevel
		wantRisk    types.RiskLevel
		wantWarning string
	}{
		{
			name:        "confident benign stays low",
			probs:       model.ProbabilityVector{0.01, 0.01, 0.01, 0.01, 0.95, 0.005, 0.005},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelLow,
		},
		{
			name:        "low confidence benign escalates to medium",
			probs:       model.ProbabilityVector{0.05, 0.05, 0.1, 0.05, 0.65, 0.05, 0.05},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelMedium,
			wantWarning: risk.WarningLowConfidenceBenign,
		},
		{
			name:        "low confidence medium escalates to high",
			probs:       model.ProbabilityVector{0.03, 0.03, 0.1, 0.1, 0.15, 0.55, 0.04},
			wantIdx:     idxVASC,
			wantInitial: types.RiskLevelMedium,
			wantRisk:    types.RiskLevelHigh,
			wantWarning: risk.WarningLowConfidenceMedium,
		},
		{
			name:        "cancer sum overrides benign top class",
			probs:       model.ProbabilityVector{0.15, 0.1, 0.05, 0.0, 0.5, 0.0, 0.1},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelHigh,
			wantWarning: risk.WarningMalignancy,
		},
		{
			name:        "low confidence high class stays high without warning",
			probs:       model.ProbabilityVector{0.1, 0.4, 0.2, 0.1, 0.1, 0.05, 0.05},
			wantIdx:     idxBCC,
			wantInitial: types.RiskLevelHigh,
			wantRisk:    types.RiskLevelHigh,
		},
		{
			name:        "confident melanoma is high without warning",
			probs:       model.ProbabilityVector{0.02, 0.02, 0.02, 0.02, 0.02, 0.02, 0.88},
			wantIdx:     idxMEL,
			wantInitial: types.RiskLevelHigh,
			wantRisk:    types.RiskLevelHigh,
		},
		{
			name:        "confidence exactly at threshold does not escalate",
			probs:       model.ProbabilityVector{0.1, 0.05, 0.05, 0.05, 0.7, 0.05, 0.0},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelLow,
		},
		{
			name:        "confident medium stays medium",
			probs:       model.ProbabilityVector{0.02, 0.02, 0.1, 0.05, 0.1, 0.7, 0.01},
			wantIdx:     idxVASC,
			wantInitial: types.RiskLevelMedium,
			wantRisk:    types.RiskLevelMedium,
		},
		{
			name:        "override replaces low confidence warning",
			probs:       model.ProbabilityVector{0.2, 0.1, 0.0, 0.0, 0.45, 0.15, 0.1},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelHigh,
			wantWarning: risk.WarningMalignancy,
		},
		{
			name:        "unnormalized vector is accepted",
			probs:       model.ProbabilityVector{0.0, 0.0, 0.0, 0.0, 0.9, 0.0, 0.0},
			wantIdx:     idxNV,
			wantInitial: types.RiskLevelLow,
			wantRisk:    types.RiskLevelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := engine.Assess(tt.probs)
			gt.NoError(t, err).Required()

			gt.Value(t, verdict.Prediction).Equal(model.DefaultTaxonomy().Label(tt.wantIdx))
			gt.Value(t, verdict.Confidence).Equal(tt.probs[tt.wantIdx])
			gt.Value(t, verdict.InitialRisk).Equal(tt.wantInitial)
			gt.Value(t, verdict.RiskLevel).Equal(tt.wantRisk)
			gt.Value(t, verdict.Warning).Equal(tt.wantWarning)
		})
	}
}

func TestEngine_Assess_InvalidInput(t *testing.T) {
	engine := risk.New(model.DefaultTaxonomy())

	tests := []struct {
		name  string
		probs model.ProbabilityVector
	}{
		{"one short", model.ProbabilityVector{0.1, 0.1, 0.1, 0.1, 0.5, 0.1}},
		{"one long", model.ProbabilityVector{0.1, 0.1, 0.1, 0.1, 0.5, 0.1, 0.0, 0.0}},
		{"nil", nil},
		{"all zero", model.ProbabilityVector{0, 0, 0, 0, 0, 0, 0}},
		{"NaN", model.ProbabilityVector{0.1, 0.1, math.NaN(), 0.1, 0.5, 0.1, 0.1}},
		{"negative", model.ProbabilityVector{0.1, 0.1, -0.1, 0.1, 0.5, 0.1, 0.1}},
		{"positive infinity", model.ProbabilityVector{0.1, 0.1, 0.1, 0.1, math.Inf(1), 0.1, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := engine.Assess(tt.probs)
			gt.Value(t, verdict).Nil()
			gt.Error(t, err).Is(model.ErrInvalidInput)
		})
	}
}

func TestEngine_Assess_TieBreak(t *testing.T) {
	engine := risk.New(model.DefaultTaxonomy())

	// nv (low) and vasc (medium) share the maximum; the lower index wins
	verdict, err := engine.Assess(model.ProbabilityVector{0.0, 0.0, 0.1, 0.0, 0.45, 0.45, 0.0})
	gt.NoError(t, err).Required()
	gt.Value(t, verdict.Prediction.ID).Equal(types.ClassID("nv"))
	gt.Value(t, verdict.InitialRisk).Equal(types.RiskLevelLow)
	gt.Value(t, verdict.RiskLevel).Equal(types.RiskLevelMedium)
	gt.Value(t, verdict.Warning).Equal(risk.WarningLowConfidenceBenign)

	verdict, err = engine.Assess(model.ProbabilityVector{0.3, 0.0, 0.0, 0.0, 0.3, 0.0, 0.3})
	gt.NoError(t, err).Required()
	gt.Value(t, verdict.Prediction.ID).Equal(types.ClassID("akiec"))
}

func TestEngine_Assess_MalignancyThresholdIsStrict(t *testing.T) {
	taxonomy, err := model.NewTaxonomy(
		[]model.ClassLabel{
			{ID: "mel", Name: "Melanoma", Risk: types.RiskLevelHigh, Cancer: true},
			{ID: "bcc", Name: "Basal cell carcinoma", Risk: types.RiskLevelHigh, Cancer: true},
			{ID: "nv", Name: "Melanocytic nevi", Risk: types.RiskLevelLow},
		},
		model.Thresholds{
			types.RiskLevelLow:    0.25,
			types.RiskLevelMedium: 0.25,
			types.RiskLevelHigh:   0.25,
		},
		0.5,
	)
	gt.NoError(t, err).Required()
	engine := risk.New(taxonomy)

	verdict, err := engine.Assess(model.ProbabilityVector{0.25, 0.25, 0.5})
	gt.NoError(t, err).Required()
	gt.Value(t, verdict.CancerProbability).Equal(0.5)
	gt.Value(t, verdict.RiskLevel).Equal(types.RiskLevelLow)
	gt.Value(t, verdict.Warning).Equal("")

	verdict, err = engine.Assess(model.ProbabilityVector{0.25, 0.375, 0.5})
	gt.NoError(t, err).Required()
	gt.Value(t, verdict.Prediction.ID).Equal(types.ClassID("nv"))
	gt.Value(t, verdict.RiskLevel).Equal(types.RiskLevelHigh)
	gt.Value(t, verdict.Warning).Equal(risk.WarningMalignancy)
}

func randomVector(rng *rand.Rand, n int) model.ProbabilityVector {
	v := make(model.ProbabilityVector, n)
	var sum float64
	for i := range v {
		v[i] = rng.Float64()
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}

func TestEngine_Assess_Properties(t *testing.T) {
	taxonomy := model.DefaultTaxonomy()
	engine := risk.New(taxonomy)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 1000 {
		probs := randomVector(rng, taxonomy.Len())

		verdict, err := engine.Assess(probs)
		gt.NoError(t, err).Required()

		// never downgraded
		gt.Bool(t, verdict.RiskLevel >= verdict.InitialRisk).True()

		// prediction is the first maximum
		idx, top := probs.ArgMax()
		gt.Value(t, verdict.Prediction).Equal(taxonomy.Label(idx))
		gt.Value(t, verdict.Confidence).Equal(top)

		// override precedence
		if verdict.CancerProbability > taxonomy.MalignancyThreshold() {
			gt.Value(t, verdict.RiskLevel).Equal(types.RiskLevelHigh)
			if verdict.InitialRisk == types.RiskLevelLow {
				gt.Value(t, verdict.Warning).Equal(risk.WarningMalignancy)
			}
		}

		// no-warning case
		if top >= taxonomy.Threshold(verdict.InitialRisk) && verdict.CancerProbability <= taxonomy.MalignancyThreshold() {
			gt.Value(t, verdict.Warning).Equal("")
			gt.Value(t, verdict.RiskLevel).Equal(verdict.InitialRisk)
		}

		// deterministic
		again, err := engine.Assess(probs)
		gt.NoError(t, err).Required()
		gt.Value(t, *again).Equal(*verdict)
	}
}

func TestEngine_Assess_Concurrent(t *testing.T) {
	engine := risk.New(model.DefaultTaxonomy())
	probs := model.ProbabilityVector{0.05, 0.05, 0.1, 0.05, 0.65, 0.05, 0.05}

	want, err := engine.Assess(probs)
	gt.NoError(t, err).Required()

	var wg sync.WaitGroup
	results := make([]*model.Verdict, 64)
	errs := make([]error, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Assess(probs)
		}(i)
	}
	wg.Wait()

	for i := range results {
		gt.NoError(t, errs[i])
		gt.Value(t, *results[i]).Equal(*want)
	}
}

func TestEngine_Assess_ErrorIsNotConfiguration(t *testing.T) {
	engine := risk.New(model.DefaultTaxonomy())
	_, err := engine.Assess(model.ProbabilityVector{0.5})
	gt.Bool(t, errors.Is(err, model.ErrInvalidConfiguration)).False()
}
