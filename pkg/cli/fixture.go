package cli

import (
	"context"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdFixture(a *app) *cli.Command {
	var (
		sourceDir string
		output    string
	)

	return &cli.Command{
		Name:  "fixture",
		Usage: "Build a deterministic sample archive from a folder below --src",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "source-dir",
				Usage:       "Folder to archive, relative to --src",
				Value:       filepath.Join("source", "takeout-sample"),
				Destination: &sourceDir,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Archive to write, relative to --src",
				Value:       "takeout-sample.zip",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			if a.paths.Source == "" {
				return goerr.New("source folder is required (--src)",
					goerr.T(types.ErrTagConfiguration))
			}
			if !filepath.IsLocal(sourceDir) || !filepath.IsLocal(output) {
				return goerr.New("fixture paths must stay inside the source folder",
					goerr.T(types.ErrTagConfiguration),
					goerr.V("source-dir", sourceDir),
					goerr.V("output", output))
			}

			fsys, base, release, err := a.paths.Tree(a.paths.Source)
			if err != nil {
				return err
			}
			defer release()

			n, err := usecase.BuildFixture(ctx, fsys, filepath.Join(base, sourceDir), fsys, filepath.Join(base, output))
			if err != nil {
				return err
			}
			p := newPrinter(a.out)
			p.printf("Wrote %s with %s file(s)\n", output, p.green(n))
			return nil
		},
	}
}
