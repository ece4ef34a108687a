package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

const stagePrune = "prune"

// ParseExtensions normalizes extension arguments. Each argument may hold
// several comma-separated extensions; every extension must start with "." and
// have at least one more character. The result is lower-cased and deduplicated.
func ParseExtensions(args ...string) ([]string, error) {
	var exts []string
	seen := make(map[string]struct{})
	for _, arg := range args {
		for _, raw := range strings.Split(arg, ",") {
			ext := strings.ToLower(strings.TrimSpace(raw))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				return nil, goerr.New("extension must start with '.' (e.g. .json)",
					goerr.T(types.ErrTagConfiguration),
					goerr.V("extension", raw))
			}
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return nil, goerr.New("at least one extension is required",
			goerr.T(types.ErrTagConfiguration))
	}
	return exts, nil
}

type PruneOptions struct {
	DryRun bool
}

// Prune deletes every file below root whose lower-cased extension is in exts.
// exts must already be normalized by ParseExtensions.
func Prune(ctx context.Context, fsys interfaces.FileSystem, root string, exts []string, opts PruneOptions, progress model.ProgressFunc) (*model.BatchReport, error) {
	if len(exts) == 0 {
		return nil, goerr.New("at least one extension is required",
			goerr.T(types.ErrTagConfiguration))
	}
	if _, err := fsys.Stat(root); err != nil {
		return nil, goerr.Wrap(err, "prune root is not accessible",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("root", root))
	}
	logger := logging.From(ctx)

	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		wanted[ext] = struct{}{}
	}

	var files []model.FileRecord
	for rec := range Walk(fsys, root, "") {
		if _, ok := wanted[model.Extension(rec.Name)]; ok {
			files = append(files, rec)
		}
	}

	report := &model.BatchReport{DryRun: opts.DryRun}
	for i, rec := range files {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "prune interrupted")
		}
		progress.Report(stagePrune, rec.Name, i, len(files))

		if !opts.DryRun {
			if err := fsys.Remove(rec.Path()); err != nil {
				report.Fail(rec.Path(), goerr.Wrap(err, "failed to delete file", goerr.T(types.ErrTagIO)))
				continue
			}
		}
		report.Succeed(rec.Path())
	}
	progress.Report(stagePrune, "", len(files), len(files))

	logger.Info("Prune finished",
		"extensions", exts,
		"deleted", report.Count(),
		"failed", report.FailureCount(),
		"dry_run", opts.DryRun,
	)
	return report, nil
}
