package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// TaxonomyFile is the TOML representation of a taxonomy
type TaxonomyFile struct {
	MalignancyThreshold *float64       `toml:"malignancy_threshold"`
	Thresholds          ThresholdsFile `toml:"thresholds"`
	Labels              []LabelFile    `toml:"label"`
}

// ThresholdsFile holds the minimum confidence per risk level. All levels are required.
type ThresholdsFile struct {
	Low    *float64 `toml:"low"`
	Medium *float64 `toml:"medium"`
	High   *float64 `toml:"high"`
}

// LabelFile is one classifier output class. Labels are listed in classifier output order.
type LabelFile struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	Risk   string `toml:"risk"`
	Cancer bool   `toml:"cancer"`
}

// Validate checks if the LabelFile is valid
func (l *LabelFile) Validate() error {
	if err := types.ClassID(l.ID).Validate(); err != nil {
		return goerr.Wrap(model.ErrInvalidConfiguration, "invalid label ID",
			goerr.V(LabelIDKey, l.ID), goerr.V("cause", err.Error()))
	}
	if l.Name == "" {
		return goerr.Wrap(model.ErrInvalidConfiguration, "label name is required", goerr.V(LabelIDKey, l.ID))
	}
	if _, err := types.ParseRiskLevel(l.Risk); err != nil {
		return goerr.Wrap(model.ErrInvalidConfiguration, "unknown risk level",
			goerr.V(LabelIDKey, l.ID), goerr.V("risk", l.Risk))
	}
	return nil
}

func (t *ThresholdsFile) toModel() (model.Thresholds, error) {
	values := map[types.RiskLevel]*float64{
		types.RiskLevelLow:    t.Low,
		types.RiskLevelMedium: t.Medium,
		types.RiskLevelHigh:   t.High,
	}

	thresholds := make(model.Thresholds)
	for _, level := range types.AllRiskLevels() {
		v := values[level]
		if v == nil {
			return nil, goerr.Wrap(model.ErrInvalidConfiguration, "confidence threshold is missing",
				goerr.V(model.RiskLevelKey, level.String()))
		}
		thresholds[level] = *v
	}
	return thresholds, nil
}

// Validate checks the file and converts it into a taxonomy
func (x *TaxonomyFile) Validate() (*model.Taxonomy, error) {
	labels := make([]model.ClassLabel, len(x.Labels))
	for i, l := range x.Labels {
		if err := l.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid label", goerr.V(LabelIndexKey, i))
		}
		risk, _ := types.ParseRiskLevel(l.Risk)
		labels[i] = model.ClassLabel{
			ID:     types.ClassID(l.ID),
			Name:   l.Name,
			Risk:   risk,
			Cancer: l.Cancer,
		}
	}

	thresholds, err := x.Thresholds.toModel()
	if err != nil {
		return nil, err
	}

	malignancy := model.DefaultMalignancyThreshold
	if x.MalignancyThreshold != nil {
		malignancy = *x.MalignancyThreshold
	}

	taxonomy, err := model.NewTaxonomy(labels, thresholds, malignancy)
	if err != nil {
		return nil, goerr.Wrap(err, "taxonomy is inconsistent")
	}
	return taxonomy, nil
}

// LoadTaxonomy loads and validates a taxonomy from a TOML file
func LoadTaxonomy(path string) (*model.Taxonomy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "taxonomy file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read taxonomy file", goerr.V(ConfigPathKey, path))
	}

	var file TaxonomyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidConfiguration, "failed to parse TOML taxonomy",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	taxonomy, err := file.Validate()
	if err != nil {
		return nil, goerr.Wrap(err, "taxonomy validation failed", goerr.V(ConfigPathKey, path))
	}

	return taxonomy, nil
}

// Taxonomy holds the CLI flag pointing at a taxonomy file
type Taxonomy struct {
	path string
}

func (x *Taxonomy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "taxonomy",
			Aliases:     []string{"t"},
			Usage:       "Taxonomy TOML file. The built-in seven class taxonomy is used when empty",
			Sources:     cli.EnvVars("DERMARISK_TAXONOMY"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured taxonomy file path
func (x *Taxonomy) Path() string {
	return x.path
}

// Configure loads the configured taxonomy or falls back to the built-in one
func (x *Taxonomy) Configure() (*model.Taxonomy, error) {
	if x.path == "" {
		return model.DefaultTaxonomy(), nil
	}
	return LoadTaxonomy(x.path)
}
