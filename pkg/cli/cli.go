package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/utils/errutil"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, os.Stdout)
}

// run executes the app writing command results to w
func run(ctx context.Context, args []string, version string, w io.Writer) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "dermarisk",
		Usage:   "Risk triage for dermoscopic lesion classifier outputs",
		Version: version,
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			sentryCfg.SetRelease(version)
			flush, err := sentryCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting dermarisk", "logger", loggerCfg, "version", version)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdAssess(),
			cmdBatch(),
			cmdValidate(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return handleRunError(ctx, err)
	}

	return nil
}

// handleRunError reports command failures to Sentry except rejected user
// input, which is only logged.
func handleRunError(ctx context.Context, err error) error {
	if errors.Is(err, model.ErrInvalidInput) {
		logging.From(ctx).Warn("input rejected", "error", err.Error())
		return err
	}
	return errutil.Handle(ctx, err, "failed to run app")
}
