package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

func writeTaxonomy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

const validTaxonomy = `
malignancy_threshold = 0.4

[thresholds]
low = 0.8
medium = 0.6
high = 0.5

[[label]]
id = "benign"
name = "Benign lesion"
risk = "low"

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true
`

func TestLoadTaxonomy_Valid(t *testing.T) {
	tax, err := config.LoadTaxonomy(writeTaxonomy(t, validTaxonomy))
	gt.NoError(t, err).Required()

	gt.Value(t, tax.Len()).Equal(2)
	gt.Value(t, tax.Label(1).ID).Equal(types.ClassID("mel"))
	gt.Value(t, tax.Label(1).Risk).Equal(types.RiskLevelHigh)
	gt.Bool(t, tax.Label(1).Cancer).True()
	gt.Value(t, tax.Threshold(types.RiskLevelLow)).Equal(0.8)
	gt.Value(t, tax.MalignancyThreshold()).Equal(0.4)
	gt.Value(t, tax.CancerIndices()).Equal([]int{1})
}

func TestLoadTaxonomy_DefaultMalignancyThreshold(t *testing.T) {
	content := `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true
`
	tax, err := config.LoadTaxonomy(writeTaxonomy(t, content))
	gt.NoError(t, err).Required()
	gt.Value(t, tax.MalignancyThreshold()).Equal(model.DefaultMalignancyThreshold)
}

func TestLoadTaxonomy_BundledFileMatchesBuiltin(t *testing.T) {
	tax, err := config.LoadTaxonomy(filepath.Join("..", "..", "..", "taxonomy.default.toml"))
	gt.NoError(t, err).Required()

	builtin := model.DefaultTaxonomy()
	gt.Value(t, tax.Labels()).Equal(builtin.Labels())
	gt.Value(t, tax.Thresholds()).Equal(builtin.Thresholds())
	gt.Value(t, tax.MalignancyThreshold()).Equal(builtin.MalignancyThreshold())
}

func TestLoadTaxonomy_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing threshold",
			content: `
[thresholds]
low = 0.7
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true
`,
		},
		{
			name: "unknown risk",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "critical"
cancer = true
`,
		},
		{
			name: "duplicate ID",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true

[[label]]
id = "mel"
name = "Melanoma again"
risk = "high"
`,
		},
		{
			name: "empty label list",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5
`,
		},
		{
			name: "threshold out of range",
			content: `
[thresholds]
low = 1.5
medium = 0.6
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true
`,
		},
		{
			name: "malignancy threshold out of range",
			content: `
malignancy_threshold = -0.1

[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "mel"
name = "Melanoma"
risk = "high"
cancer = true
`,
		},
		{
			name: "invalid label ID",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "Mel_Anoma"
name = "Melanoma"
risk = "high"
cancer = true
`,
		},
		{
			name: "missing name",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "mel"
risk = "high"
cancer = true
`,
		},
		{
			name: "no cancer class",
			content: `
[thresholds]
low = 0.7
medium = 0.6
high = 0.5

[[label]]
id = "nv"
name = "Melanocytic nevi"
risk = "low"
`,
		},
		{
			name:    "broken TOML",
			content: `[thresholds`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadTaxonomy(writeTaxonomy(t, tt.content))
			gt.Error(t, err).Is(model.ErrInvalidConfiguration)
		})
	}
}

func TestLoadTaxonomy_MissingFile(t *testing.T) {
	_, err := config.LoadTaxonomy(filepath.Join(t.TempDir(), "nonexistent.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestTaxonomy_Configure(t *testing.T) {
	t.Run("built-in when no path", func(t *testing.T) {
		tax, err := config.NewTaxonomyForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, tax.Len()).Equal(7)
	})

	t.Run("file when path set", func(t *testing.T) {
		tax, err := config.NewTaxonomyForTest(writeTaxonomy(t, validTaxonomy)).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, tax.Len()).Equal(2)
	})
}
