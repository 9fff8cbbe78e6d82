package cli

import (
	"bufio"
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/repository/memory"
	"github.com/secmon-lab/dermarisk/pkg/usecase"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"github.com/secmon-lab/dermarisk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const maxBatchLineSize = 1 << 20

type batchLine struct {
	Line    int            `json:"line"`
	Verdict *model.Verdict `json:"verdict,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func cmdBatch() *cli.Command {
	var input string
	var concurrency int
	var taxonomyCfg config.Taxonomy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "JSON Lines file, one vector per line ('-' for stdin)",
			Value:       stdinPath,
			Destination: &input,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of vectors assessed in parallel",
			Value:       usecase.DefaultBatchConcurrency,
			Sources:     cli.EnvVars("DERMARISK_BATCH_CONCURRENCY"),
			Destination: &concurrency,
		},
	}
	flags = append(flags, taxonomyCfg.Flags()...)

	return &cli.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Assess probability vectors from JSON Lines and print one result per line",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			taxonomy, err := taxonomyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load taxonomy")
			}

			r, err := openInput(input)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, r)

			var lines []batchLine
			var vectors []model.ProbabilityVector
			var lineIndex []int

			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLineSize)
			for n := 1; scanner.Scan(); n++ {
				raw := bytes.TrimSpace(scanner.Bytes())
				if len(raw) == 0 {
					continue
				}

				probs, err := parseProbabilityJSON(raw)
				if err != nil {
					lines = append(lines, batchLine{Line: n, Error: err.Error()})
					continue
				}
				lineIndex = append(lineIndex, len(lines))
				lines = append(lines, batchLine{Line: n})
				vectors = append(vectors, probs)
			}
			if err := scanner.Err(); err != nil {
				return goerr.Wrap(err, "failed to read batch input", goerr.V("path", input))
			}

			uc := usecase.New(memory.New(), taxonomy, usecase.WithBatchConcurrency(concurrency))
			results, err := uc.Assessment.AssessBatch(ctx, vectors)
			if err != nil {
				return err
			}
			for i, res := range results {
				line := &lines[lineIndex[i]]
				if res.Err != nil {
					line.Error = res.Err.Error()
					continue
				}
				line.Verdict = res.Verdict
			}

			var failed int
			for _, line := range lines {
				if line.Error != "" {
					failed++
				}
				if err := writeJSONLine(c.Root().Writer, line); err != nil {
					return err
				}
			}

			logging.From(ctx).Info("Batch assessed", "total", len(lines), "rejected", failed)
			if failed > 0 {
				return goerr.Wrap(model.ErrInvalidInput, "some vectors were rejected",
					goerr.V("rejected", failed), goerr.V("total", len(lines)))
			}
			return nil
		},
	}
}
