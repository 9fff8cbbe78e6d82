package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

func TestVerdict_MarshalJSON(t *testing.T) {
	verdict := model.Verdict{
		Prediction:        model.ClassLabel{ID: "nv", Name: "Melanocytic nevi", Risk: types.RiskLevelLow},
		Confidence:        0.95,
		InitialRisk:       types.RiskLevelLow,
		RiskLevel:         types.RiskLevelLow,
		CancerProbability: 0.02,
	}

	t.Run("warning is null when absent", func(t *testing.T) {
		data, err := json.Marshal(verdict)
		gt.NoError(t, err).Required()

		var out map[string]any
		gt.NoError(t, json.Unmarshal(data, &out)).Required()
		gt.Value(t, out["risk_level"]).Equal("low")
		gt.Value(t, out["confidence"]).Equal(0.95)
		gt.Value(t, out["prediction"]).Equal("Melanocytic nevi")
		gt.Value(t, out["prediction_id"]).Equal("nv")
		gt.Map(t, out).HasKey("warning")
		gt.Value(t, out["warning"]).Nil()
		gt.B(t, verdict.HasWarning()).False()
	})

	t.Run("warning is a string when present", func(t *testing.T) {
		v := verdict
		v.RiskLevel = types.RiskLevelMedium
		v.Warning = "Consult a healthcare provider."

		data, err := json.Marshal(v)
		gt.NoError(t, err).Required()

		var out map[string]any
		gt.NoError(t, json.Unmarshal(data, &out)).Required()
		gt.Value(t, out["risk_level"]).Equal("medium")
		gt.Value(t, out["initial_risk_level"]).Equal("low")
		gt.Value(t, out["warning"]).Equal("Consult a healthcare provider.")
		gt.B(t, v.HasWarning()).True()
	})
}

func TestVerdict_Body(t *testing.T) {
	v := model.Verdict{
		Prediction:  model.ClassLabel{ID: "mel", Name: "Melanoma", Risk: types.RiskLevelHigh},
		Confidence:  0.8,
		InitialRisk: types.RiskLevelHigh,
		RiskLevel:   types.RiskLevelHigh,
		Warning:     "See a dermatologist.",
	}

	body := v.Body()
	gt.Value(t, body.Prediction).Equal("Melanoma")
	gt.Value(t, body.PredictionID).Equal(types.ClassID("mel"))
	gt.Value(t, body.RiskLevel).Equal(types.RiskLevelHigh)
	if body.Warning == nil {
		t.Fatal("warning should be set")
	}
	gt.Value(t, *body.Warning).Equal("See a dermatologist.")

	v.Warning = "changed"
	gt.Value(t, *body.Warning).Equal("See a dermatologist.")
}
