package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/takeout/pkg/cli/config"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Option func(*app)

// WithOutput replaces stdout for command summaries.
func WithOutput(w io.Writer) Option {
	return func(a *app) {
		a.out = w
	}
}

// app carries global configuration shared by every command.
type app struct {
	logger config.Logger
	sentry config.Sentry
	file   config.ConfigFile
	store  config.Store
	paths  config.Paths
	quiet  bool

	out    io.Writer
	loaded *config.File
	flush  func()
}

func (a *app) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, a.logger.Flags()...)
	flags = append(flags, a.sentry.Flags()...)
	flags = append(flags, a.file.Flags()...)
	flags = append(flags, a.store.Flags()...)
	flags = append(flags, a.paths.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "quiet",
		Aliases:     []string{"q"},
		Usage:       "Do not render progress bars",
		Destination: &a.quiet,
		Sources:     cli.EnvVars("TAKEOUT_QUIET"),
	})
	return flags
}

func (a *app) before(ctx context.Context, _ *cli.Command) (context.Context, error) {
	logger, err := a.logger.Configure()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	flush, err := a.sentry.Configure()
	if err != nil {
		return nil, err
	}
	a.flush = flush

	loaded, err := a.file.Load()
	if err != nil {
		return nil, err
	}
	a.loaded = loaded
	a.paths.Apply(loaded)

	logger.Debug("Configuration loaded",
		slog.Any("sentry", a.sentry),
		slog.String("store", a.store.Backend()),
		slog.String("src", a.paths.Source),
		slog.String("dst", a.paths.Destination),
	)
	return ctx, nil
}

// pipeline binds the configured folders and builds the stage pipeline with
// its session cursor. The returned func releases every binding.
func (a *app) pipeline(ctx context.Context, requireBoth bool) (*usecase.Pipeline, *usecase.SessionUseCase, func(), error) {
	bindings := a.paths.Bindings
	if requireBoth {
		bindings = a.paths.Workspace
	}
	ws, release, err := bindings()
	if err != nil {
		return nil, nil, nil, err
	}

	classifier, err := a.loaded.Classifier()
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	st, closeStore, err := a.store.New(ctx)
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	src, dst := a.paths.Names()
	session := usecase.NewSession(st, usecase.WithWorkspace(ws, src, dst))
	pipeline := usecase.NewPipeline(ws, usecase.WithClassifier(classifier))
	return pipeline, session, func() {
		closeStore()
		release()
	}, nil
}

// run executes one action synchronously, rendering progress, and records it
// in the session cursor.
func (a *app) run(ctx context.Context, p *usecase.Pipeline, s *usecase.SessionUseCase, action model.Action, params model.StageParams) (any, error) {
	bar := a.progress()
	result, err := p.Run(ctx, action, params, bar.Report)
	bar.Finish()
	if err != nil {
		return nil, err
	}
	s.Record(ctx, action)
	return result, nil
}

func (a *app) progress() *progressRenderer {
	return newProgressRenderer(os.Stderr, a.quiet)
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	a := &app{out: os.Stdout}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cli.Command{
		Name:    "takeout",
		Usage:   "Organize bulk photo and video export archives into a flat library",
		Version: types.Version,
		Flags:   a.flags(),
		Before:  a.before,
		After: func(ctx context.Context, _ *cli.Command) error {
			if a.flush != nil {
				a.flush()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdStatus(a),
			cmdUnpack(a),
			cmdValidate(a),
			cmdFlatten(a),
			cmdPrune(a),
			cmdCollapse(a),
			cmdReport(a),
			cmdFixture(a),
			cmdSession(a),
			cmdServe(a),
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		logger := logging.From(ctx)
		logger.Error("CLI execution failed", slog.Any("error", err))
		if a.sentry.Enabled() {
			sentry.CaptureException(err)
			if a.flush != nil {
				a.flush()
			}
		}
		return err
	}

	return nil
}
