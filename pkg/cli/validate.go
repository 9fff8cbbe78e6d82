package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var taxonomyCfg config.Taxonomy

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the taxonomy file",
		Flags:   taxonomyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			taxonomy, err := taxonomyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "taxonomy validation failed")
			}

			source := taxonomyCfg.Path()
			if source == "" {
				source = "built-in"
			}
			logger.Info("Taxonomy validation passed",
				"source", source,
				"label_count", taxonomy.Len(),
				"cancer_indices", taxonomy.CancerIndices(),
				"malignancy_threshold", taxonomy.MalignancyThreshold(),
			)
			for i, label := range taxonomy.Labels() {
				logger.Debug("Label validated",
					"index", i,
					"id", label.ID,
					"name", label.Name,
					"risk", label.Risk.String(),
					"cancer", label.Cancer,
				)
			}

			return nil
		},
	}
}
