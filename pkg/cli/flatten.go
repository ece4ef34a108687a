package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func flattenActions(fileType string) ([]model.Action, error) {
	if fileType == "all" {
		return []model.Action{model.ActionFlattenImages, model.ActionFlattenVideos}, nil
	}
	class, err := model.ParseMediaClass(fileType)
	if err != nil {
		return nil, err
	}
	switch class {
	case model.MediaImage:
		return []model.Action{model.ActionFlattenImages}, nil
	case model.MediaVideo:
		return []model.Action{model.ActionFlattenVideos}, nil
	}
	return nil, goerr.New("only image and video files can be flattened",
		goerr.T(types.ErrTagConfiguration),
		goerr.V("type", fileType))
}

func flattenClass(action model.Action) model.MediaClass {
	if action == model.ActionFlattenVideos {
		return model.MediaVideo
	}
	return model.MediaImage
}

func flattenVerb(action model.Action) string {
	if action == model.ActionFlattenVideos {
		return "Moved videos:"
	}
	return "Moved images:"
}

func cmdFlatten(a *app) *cli.Command {
	var (
		fileType string
		from     string
		to       string
		dryRun   bool
	)

	return &cli.Command{
		Name:  "flatten",
		Usage: "Move images into photos/ and videos into videos/ with collision-safe names",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "File type to move (image, video or all)",
				Value:       "all",
				Destination: &fileType,
			},
			&cli.StringFlag{
				Name:        "from",
				Usage:       "Tree to collect files from (default: <dst>/unpacked)",
				Destination: &from,
			},
			&cli.StringFlag{
				Name:        "to",
				Usage:       "Flat folder receiving the files (default: <dst>/photos or <dst>/videos); needs --type image or video",
				Destination: &to,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Print the planned moves without touching files",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			actions, err := flattenActions(fileType)
			if err != nil {
				return err
			}
			out := newPrinter(a.out)

			if from != "" || to != "" {
				if to != "" && len(actions) != 1 {
					return goerr.New("--to needs --type image or video",
						goerr.T(types.ErrTagConfiguration))
				}
				for _, action := range actions {
					report, err := a.flattenPaths(ctx, from, to, flattenClass(action), dryRun)
					if err != nil {
						return err
					}
					out.batch(flattenVerb(action), report)
				}
				return nil
			}

			p, s, release, err := a.pipeline(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			for _, action := range actions {
				result, err := a.run(ctx, p, s, action, model.StageParams{DryRun: dryRun})
				if err != nil {
					return err
				}
				out.batch(flattenVerb(action), result.(*model.BatchReport))
			}
			return nil
		},
	}
}

// flattenPaths moves files of class between folders named on the command
// line. Folders left empty fall back to the library layout. The cursor is not
// recorded since the trees may lie outside the library.
func (a *app) flattenPaths(ctx context.Context, from, to string, class model.MediaClass, dryRun bool) (*model.BatchReport, error) {
	var err error
	if from == "" {
		if from, err = a.paths.LibraryPath(usecase.UnpackedDir); err != nil {
			return nil, err
		}
	}
	if to == "" {
		if to, err = a.paths.LibraryPath(class.LibraryDir()); err != nil {
			return nil, err
		}
	}

	classifier, err := a.loaded.Classifier()
	if err != nil {
		return nil, err
	}
	fsys, resolved, release, err := a.paths.Resolve(from, to)
	if err != nil {
		return nil, err
	}
	defer release()

	bar := a.progress()
	defer bar.Finish()
	return usecase.Flatten(ctx, fsys, resolved[0], resolved[1], class,
		usecase.FlattenOptions{DryRun: dryRun, Classifier: classifier}, bar.Report)
}
