package cli

import (
	"context"

	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type repairFlags struct {
	reextract bool
	remove    bool
}

func (f *repairFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "reextract-flagged",
			Usage:       "Extract again archives whose target is empty or too small",
			Destination: &f.reextract,
		},
		&cli.BoolFlag{
			Name:        "remove-archives",
			Usage:       "Delete source archives whose extraction looks complete",
			Destination: &f.remove,
		},
	}
}

func (f *repairFlags) enabled() bool {
	return f.reextract || f.remove
}

// validateAndRepair runs the validator and applies the requested repairs.
// Archives are removed only after flagged ones were re-extracted and
// validated again.
func (a *app) validateAndRepair(ctx context.Context, p *usecase.Pipeline, s *usecase.SessionUseCase, flags repairFlags) error {
	out := newPrinter(a.out)

	result, err := a.run(ctx, p, s, model.ActionValidate, model.StageParams{})
	if err != nil {
		return err
	}
	report := result.(*model.ValidationReport)
	out.validation(report)

	if flags.reextract {
		if flagged := report.Flagged(); len(flagged) > 0 {
			result, err := a.run(ctx, p, s, model.ActionUnpack, model.StageParams{Reextract: flagged})
			if err != nil {
				return err
			}
			out.unpack(result.(*model.UnpackReport))

			result, err = a.run(ctx, p, s, model.ActionValidate, model.StageParams{})
			if err != nil {
				return err
			}
			report = result.(*model.ValidationReport)
			out.validation(report)
		}
	}

	if flags.remove {
		healthy := report.Healthy()
		if len(healthy) == 0 {
			logging.From(ctx).Info("No archive is safe to remove")
			return nil
		}
		removed, err := usecase.RemoveArchives(ctx, p.Workspace(), healthy)
		if err != nil {
			return err
		}
		out.batch("Removed archives:", removed)
	}
	return nil
}

func cmdUnpack(a *app) *cli.Command {
	var flags repairFlags

	return &cli.Command{
		Name:  "unpack",
		Usage: "Extract every archive that has no extraction target yet",
		Flags: flags.Flags(),
		Action: func(ctx context.Context, _ *cli.Command) error {
			p, s, release, err := a.pipeline(ctx, true)
			if err != nil {
				return err
			}
			defer release()

			result, err := a.run(ctx, p, s, model.ActionUnpack, model.StageParams{})
			if err != nil {
				return err
			}
			out := newPrinter(a.out)
			out.unpack(result.(*model.UnpackReport))

			status, err := p.Status()
			if err != nil {
				return err
			}
			out.status(status)

			if !flags.enabled() {
				return nil
			}
			return a.validateAndRepair(ctx, p, s, flags)
		},
	}
}

func cmdValidate(a *app) *cli.Command {
	var flags repairFlags

	return &cli.Command{
		Name:  "validate",
		Usage: "Report empty or undersized extraction targets",
		Flags: flags.Flags(),
		Action: func(ctx context.Context, _ *cli.Command) error {
			p, s, release, err := a.pipeline(ctx, true)
			if err != nil {
				return err
			}
			defer release()

			return a.validateAndRepair(ctx, p, s, flags)
		},
	}
}
