package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/cli/config"
	httpctrl "github.com/secmon-lab/dermarisk/pkg/controller/http"
	"github.com/secmon-lab/dermarisk/pkg/usecase"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var corsOrigins []string
	var taxonomyCfg config.Taxonomy
	var repoCfg config.Repository
	var classifierCfg config.Classifier

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DERMARISK_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Origin allowed to call the API from a browser (repeatable)",
			Value:       []string{httpctrl.DefaultCORSOrigin},
			Sources:     cli.EnvVars("DERMARISK_CORS_ORIGIN"),
			Destination: &corsOrigins,
		},
	}

	// Add shared config flags
	flags = append(flags, taxonomyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, classifierCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			taxonomy, err := taxonomyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load taxonomy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			var ucOpts []usecase.Option
			cls, err := classifierCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize classifier")
			}
			if cls != nil {
				ucOpts = append(ucOpts, usecase.WithClassifier(cls))
				logging.Default().Info("Image classifier enabled")
			} else {
				logging.Default().Info("Classifier endpoint not configured, /analyze is disabled")
			}

			uc := usecase.New(repo, taxonomy, ucOpts...)

			httpHandler, err := httpctrl.New(uc.Assessment, httpctrl.WithCORSOrigins(corsOrigins...))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"labels", taxonomy.Len(),
					"cors_origins", corsOrigins,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logging.Default().Info("Context canceled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
