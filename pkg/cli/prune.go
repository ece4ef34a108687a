package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func rootFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "root",
		Usage:       "Tree to operate on (default: the --dst folder)",
		Destination: dst,
	}
}

func cmdPrune(a *app) *cli.Command {
	var (
		exts   []string
		root   string
		dryRun bool
	)

	return &cli.Command{
		Name:  "prune",
		Usage: "Delete files with the given extensions",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "ext",
				Aliases:     []string{"e"},
				Usage:       "Extension to delete, repeatable or comma separated (e.g. .json)",
				Destination: &exts,
			},
			rootFlag(&root),
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Print matching files without deleting them",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			if len(exts) == 0 && a.loaded != nil {
				exts = a.loaded.Prune.Extensions
			}
			parsed, err := usecase.ParseExtensions(exts...)
			if err != nil {
				return err
			}

			var report *model.BatchReport
			if root != "" {
				fsys, dir, release, err := a.paths.Tree(root)
				if err != nil {
					return err
				}
				defer release()

				bar := a.progress()
				report, err = usecase.Prune(ctx, fsys, dir, parsed, usecase.PruneOptions{DryRun: dryRun}, bar.Report)
				bar.Finish()
				if err != nil {
					return err
				}
			} else {
				p, s, release, err := a.pipeline(ctx, false)
				if err != nil {
					return err
				}
				defer release()

				result, err := a.run(ctx, p, s, model.ActionPrune, model.StageParams{Extensions: parsed, DryRun: dryRun})
				if err != nil {
					return err
				}
				report = result.(*model.BatchReport)
			}

			newPrinter(a.out).batch("Deleted", report)
			return nil
		},
	}
}

func cmdCollapse(a *app) *cli.Command {
	var root string

	return &cli.Command{
		Name:  "collapse",
		Usage: "Remove folders left empty, innermost first",
		Flags: []cli.Flag{rootFlag(&root)},
		Action: func(ctx context.Context, _ *cli.Command) error {
			var report *model.CollapseReport
			if root != "" {
				fsys, dir, release, err := a.paths.Tree(root)
				if err != nil {
					return err
				}
				defer release()

				if report, err = usecase.Collapse(ctx, fsys, dir); err != nil {
					return err
				}
			} else {
				p, s, release, err := a.pipeline(ctx, false)
				if err != nil {
					return err
				}
				defer release()

				result, err := a.run(ctx, p, s, model.ActionCollapse, model.StageParams{})
				if err != nil {
					return err
				}
				report = result.(*model.CollapseReport)
			}

			newPrinter(a.out).collapse(report)
			return nil
		},
	}
}

func cmdReport(a *app) *cli.Command {
	var (
		root string
		exif bool
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Count files per type and extension, optionally per capture year",
		Flags: []cli.Flag{
			rootFlag(&root),
			&cli.BoolFlag{
				Name:        "exif",
				Usage:       "Read EXIF capture dates of images",
				Destination: &exif,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			var report *model.LibraryReport
			if root != "" {
				fsys, dir, release, err := a.paths.Tree(root)
				if err != nil {
					return err
				}
				defer release()

				classifier, err := a.loaded.Classifier()
				if err != nil {
					return err
				}
				bar := a.progress()
				report, err = usecase.Report(ctx, fsys, dir, usecase.ReportOptions{EXIF: exif, Classifier: classifier}, bar.Report)
				bar.Finish()
				if err != nil {
					return err
				}
			} else {
				p, s, release, err := a.pipeline(ctx, false)
				if err != nil {
					return err
				}
				defer release()

				result, err := a.run(ctx, p, s, model.ActionReport, model.StageParams{EXIF: exif})
				if err != nil {
					return err
				}
				report = result.(*model.LibraryReport)
			}

			logging.From(ctx).Debug("Report finished", slog.Int("files", report.Files))
			newPrinter(a.out).library(report)
			return nil
		},
	}
}
