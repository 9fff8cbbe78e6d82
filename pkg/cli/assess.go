package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/service/risk"
	"github.com/urfave/cli/v3"
)

func cmdAssess() *cli.Command {
	var probabilities string
	var input string
	var taxonomyCfg config.Taxonomy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "probabilities",
			Aliases:     []string{"p"},
			Usage:       "Comma separated classifier output, e.g. 0.1,0.2,0.7",
			Destination: &probabilities,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "JSON file with an array or {\"probabilities\":[...]} ('-' for stdin)",
			Destination: &input,
		},
	}
	flags = append(flags, taxonomyCfg.Flags()...)

	return &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Assess one probability vector and print the verdict as JSON",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if (probabilities == "") == (input == "") {
				return goerr.New("exactly one of --probabilities or --input is required")
			}

			taxonomy, err := taxonomyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load taxonomy")
			}

			var probs model.ProbabilityVector
			if probabilities != "" {
				probs, err = parseProbabilityList(probabilities)
			} else {
				var data []byte
				data, err = readInput(ctx, input)
				if err == nil {
					probs, err = parseProbabilityJSON(data)
				}
			}
			if err != nil {
				return err
			}

			verdict, err := risk.New(taxonomy).Assess(probs)
			if err != nil {
				return goerr.Wrap(err, "failed to assess probabilities")
			}

			return writeJSONLine(c.Root().Writer, verdict)
		},
	}
}
