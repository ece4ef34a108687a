package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/cli/config"
	controller "github.com/m-mizutani/takeout/pkg/controller/http"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(a *app) *cli.Command {
	var serverCfg config.Server

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the interactive API server",
		Flags:   serverCfg.Flags(),
		Action: func(ctx context.Context, _ *cli.Command) error {
			logger := logging.From(ctx)

			logger.Info("Starting takeout server",
				slog.String("addr", serverCfg.Addr),
				slog.String("src", a.paths.Source),
				slog.String("dst", a.paths.Destination),
				slog.String("store", a.store.Backend()),
			)

			pipeline, session, release, err := a.pipeline(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			stageUC := usecase.NewStage(pipeline, session, usecase.NewJobRunner())

			server, err := controller.NewServer(
				ctx,
				stageUC,
				session,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			// Wait for a running stage before the bindings are released.
			if err := stageUC.Wait(shutdownCtx); err != nil {
				logger.Warn("Stage still running at shutdown", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
