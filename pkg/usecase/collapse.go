package usecase

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// maxTopExtensions bounds CollapseReport.TopExtensions.
const maxTopExtensions = 10

// Collapse removes every directory below root that is empty or becomes empty
// once its empty children are removed. root itself is kept. Running it again
// on a converged tree removes nothing.
func Collapse(ctx context.Context, fsys interfaces.FileSystem, root string) (*model.CollapseReport, error) {
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, goerr.New("collapse root is not an accessible directory",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("root", root))
	}
	logger := logging.From(ctx)

	report := &model.CollapseReport{}
	collapseDir(ctx, fsys, root, &report.BatchReport)
	if err := ctx.Err(); err != nil {
		return report, goerr.Wrap(err, "collapse interrupted")
	}

	report.Remaining = countNonEmptyDirs(fsys, root)
	seen := make(map[string]struct{})
	for rec := range Walk(fsys, root, "") {
		label := model.ExtensionLabel(rec.Name)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		report.TopExtensions = append(report.TopExtensions, label)
		if len(report.TopExtensions) == maxTopExtensions {
			break
		}
	}

	logger.Info("Collapse finished",
		"removed", report.Count(),
		"failed", report.FailureCount(),
		"remaining", report.Remaining,
	)
	return report, nil
}

func subdirs(fsys interfaces.FileSystem, dir string) ([]string, bool) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, false
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && e.Type()&fs.ModeSymlink == 0 {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs, true
}

func isEmptyDir(fsys interfaces.FileSystem, dir string) bool {
	entries, err := fsys.ReadDir(dir)
	return err == nil && len(entries) == 0
}

// collapseDir sweeps the children of dir post-order.
func collapseDir(ctx context.Context, fsys interfaces.FileSystem, dir string, report *model.BatchReport) {
	children, ok := subdirs(fsys, dir)
	if !ok {
		return
	}
	for _, child := range children {
		if ctx.Err() != nil {
			return
		}
		collapseDir(ctx, fsys, child, report)
		if !isEmptyDir(fsys, child) {
			continue
		}
		if err := fsys.Remove(child); err != nil {
			report.Fail(child, goerr.Wrap(err, "failed to remove directory", goerr.T(types.ErrTagIO)))
			continue
		}
		report.Succeed(child)
	}
}

func countNonEmptyDirs(fsys interfaces.FileSystem, dir string) int {
	count := 0
	if !isEmptyDir(fsys, dir) {
		count++
	}
	children, _ := subdirs(fsys, dir)
	for _, child := range children {
		count += countNonEmptyDirs(fsys, child)
	}
	return count
}
