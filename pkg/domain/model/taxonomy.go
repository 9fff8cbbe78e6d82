package model

import (
	"math"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

// DefaultMalignancyThreshold is the summed probability over cancer classes above
// which a verdict is forced to high risk
const DefaultMalignancyThreshold = 0.3

// ClassLabel is one condition category in classifier output order
type ClassLabel struct {
	ID     types.ClassID
	Name   string
	Risk   types.RiskLevel
	Cancer bool
}

// Thresholds maps a risk level to the minimum confidence required to keep it
type Thresholds map[types.RiskLevel]float64

// Taxonomy is the validated, read-only classification setup shared by all assessments.
// Use NewTaxonomy to build one.
type Taxonomy struct {
	labels              []ClassLabel
	thresholds          Thresholds
	malignancyThreshold float64
	cancerIndices       []int
}

// NewTaxonomy validates the tables and returns an immutable Taxonomy.
// Every failure wraps ErrInvalidConfiguration; missing entries are never defaulted.
func NewTaxonomy(labels []ClassLabel, thresholds Thresholds, malignancyThreshold float64) (*Taxonomy, error) {
	if len(labels) == 0 {
		return nil, goerr.Wrap(ErrInvalidConfiguration, "at least one class label is required")
	}

	seen := make(map[types.ClassID]bool, len(labels))
	var cancerIndices []int
	for i, label := range labels {
		if err := label.ID.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "invalid class ID",
				goerr.V(IndexKey, i), goerr.V(ClassIDKey, label.ID), goerr.V("reason", err.Error()))
		}
		if seen[label.ID] {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "duplicate class ID", goerr.V(ClassIDKey, label.ID))
		}
		seen[label.ID] = true

		if label.Name == "" {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "class name is required", goerr.V(ClassIDKey, label.ID))
		}
		if !label.Risk.IsValid() {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "class has no risk level mapping",
				goerr.V(ClassIDKey, label.ID), goerr.V(RiskLevelKey, int(label.Risk)))
		}
		if label.Cancer {
			cancerIndices = append(cancerIndices, i)
		}
	}

	if len(cancerIndices) == 0 {
		return nil, goerr.Wrap(ErrInvalidConfiguration, "at least one class must be marked as cancer")
	}

	for level := range thresholds {
		if !level.IsValid() {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "threshold for unknown risk level", goerr.V(RiskLevelKey, int(level)))
		}
	}
	for _, level := range types.AllRiskLevels() {
		v, ok := thresholds[level]
		if !ok {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "confidence threshold is missing", goerr.V(RiskLevelKey, level.String()))
		}
		if !isUnitInterval(v) {
			return nil, goerr.Wrap(ErrInvalidConfiguration, "confidence threshold must be between 0 and 1",
				goerr.V(RiskLevelKey, level.String()), goerr.V(ThresholdKey, v))
		}
	}

	if !isUnitInterval(malignancyThreshold) {
		return nil, goerr.Wrap(ErrInvalidConfiguration, "malignancy threshold must be between 0 and 1",
			goerr.V(ThresholdKey, malignancyThreshold))
	}

	copied := make(Thresholds, len(thresholds))
	for k, v := range thresholds {
		copied[k] = v
	}

	return &Taxonomy{
		labels:              slices.Clone(labels),
		thresholds:          copied,
		malignancyThreshold: malignancyThreshold,
		cancerIndices:       cancerIndices,
	}, nil
}

func isUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Len returns the number of class labels, which is also the expected vector length
func (t *Taxonomy) Len() int {
	return len(t.labels)
}

// Label returns the class label at index i in classifier output order
func (t *Taxonomy) Label(i int) ClassLabel {
	return t.labels[i]
}

// Labels returns a copy of all class labels
func (t *Taxonomy) Labels() []ClassLabel {
	return slices.Clone(t.labels)
}

// Threshold returns the minimum confidence for the given risk level
func (t *Taxonomy) Threshold(level types.RiskLevel) float64 {
	return t.thresholds[level]
}

// Thresholds returns a copy of the confidence threshold table
func (t *Taxonomy) Thresholds() Thresholds {
	copied := make(Thresholds, len(t.thresholds))
	for k, v := range t.thresholds {
		copied[k] = v
	}
	return copied
}

// MalignancyThreshold returns the aggregate cancer probability threshold
func (t *Taxonomy) MalignancyThreshold() float64 {
	return t.malignancyThreshold
}

// CancerIndices returns the vector indices of cancer classes
func (t *Taxonomy) CancerIndices() []int {
	return slices.Clone(t.cancerIndices)
}

// DefaultTaxonomy returns the 7-class dermoscopy taxonomy the reference model was trained on
func DefaultTaxonomy() *Taxonomy {
	taxonomy, err := NewTaxonomy(
		[]ClassLabel{
			{ID: "akiec", Name: "Actinic keratoses and intraepithelial carcinomae", Risk: types.RiskLevelHigh, Cancer: true},
			{ID: "bcc", Name: "Basal cell carcinoma", Risk: types.RiskLevelHigh, Cancer: true},
			{ID: "bkl", Name: "Benign keratosis-like lesions", Risk: types.RiskLevelLow},
			{ID: "df", Name: "Dermatofibroma", Risk: types.RiskLevelLow},
			{ID: "nv", Name: "Melanocytic nevi", Risk: types.RiskLevelLow},
			{ID: "vasc", Name: "Pyogenic granulomas and hemorrhage", Risk: types.RiskLevelMedium},
			{ID: "mel", Name: "Melanoma", Risk: types.RiskLevelHigh, Cancer: true},
		},
		Thresholds{
			types.RiskLevelLow:    0.7,
			types.RiskLevelMedium: 0.6,
			types.RiskLevelHigh:   0.5,
		},
		DefaultMalignancyThreshold,
	)
	if err != nil {
		panic(err)
	}
	return taxonomy
}
