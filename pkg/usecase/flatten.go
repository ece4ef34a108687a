package usecase

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// FlattenOptions controls Flatten. A nil Classifier uses the default sets.
type FlattenOptions struct {
	DryRun     bool
	Classifier *model.Classifier
}

// Flatten moves every file of class found below src directly into dst,
// renaming on collision to "stem-N.ext" with the first free N. dst must not be
// src or inside it; that check runs before anything is touched. Succeeded
// holds the destination paths.
func Flatten(ctx context.Context, fsys interfaces.FileSystem, src, dst string, class model.MediaClass, opts FlattenOptions, progress model.ProgressFunc) (*model.BatchReport, error) {
	if class != model.MediaImage && class != model.MediaVideo {
		return nil, goerr.New("only image or video files can be flattened",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("class", class.String()))
	}
	if err := EnsureOutside(fsys, src, dst); err != nil {
		return nil, err
	}
	if _, err := fsys.Stat(src); err != nil {
		return nil, goerr.Wrap(err, "source directory is not accessible",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("source", src))
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = model.DefaultClassifier()
	}
	logger := logging.From(ctx)
	stage := "flatten-" + class.String()

	if !opts.DryRun {
		if err := fsys.MkdirAll(dst); err != nil {
			return nil, goerr.Wrap(err, "failed to create destination",
				goerr.T(types.ErrTagIO),
				goerr.V("destination", dst))
		}
	}

	var files []model.FileRecord
	for rec := range Walk(fsys, src, dst) {
		if classifier.Classify(rec.Name) == class {
			files = append(files, rec)
		}
	}

	report := &model.BatchReport{DryRun: opts.DryRun}
	reserved := make(map[string]struct{})
	for i, rec := range files {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "flatten interrupted")
		}
		progress.Report(stage, rec.Name, i, len(files))

		if opts.DryRun {
			target, err := predictName(fsys, dst, rec.Name, reserved)
			if err != nil {
				report.Fail(rec.Path(), err)
				continue
			}
			report.Succeed(target)
			continue
		}

		target, err := moveFile(fsys, rec.Path(), dst, rec.Name)
		if err != nil {
			logger.Warn("Failed to move file", "path", rec.Path(), "error", err)
			report.Fail(rec.Path(), err)
			continue
		}
		report.Succeed(target)
	}
	progress.Report(stage, "", len(files), len(files))

	logger.Info("Flatten finished",
		"class", class.String(),
		"moved", report.Count(),
		"failed", report.FailureCount(),
		"dry_run", opts.DryRun,
	)
	return report, nil
}

// splitName splits name at its last dot. A dot at index 0 does not start an
// extension.
func splitName(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	stem, ext := splitName(name)
	return stem + "-" + strconv.Itoa(n) + ext
}

// createUnique exclusively creates the first free candidate name in dir.
func createUnique(fsys interfaces.FileSystem, dir, name string) (interfaces.File, string, error) {
	for n := 0; ; n++ {
		target := filepath.Join(dir, candidateName(name, n))
		f, err := fsys.Create(target)
		if err == nil {
			return f, target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", goerr.Wrap(err, "failed to create destination file",
				goerr.T(types.ErrTagIO),
				goerr.V("path", target))
		}
	}
}

func predictName(fsys interfaces.FileSystem, dir, name string, reserved map[string]struct{}) (string, error) {
	for n := 0; ; n++ {
		target := filepath.Join(dir, candidateName(name, n))
		if _, ok := reserved[target]; ok {
			continue
		}
		_, err := fsys.Stat(target)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", goerr.Wrap(err, "failed to inspect destination",
				goerr.T(types.ErrTagIO),
				goerr.V("path", target))
		}
		reserved[target] = struct{}{}
		return target, nil
	}
}

// moveFile copies source into dir under a collision-free name and removes the
// source. A partial copy is removed on copy failure, and the copy is removed
// when the source cannot be deleted.
func moveFile(fsys interfaces.FileSystem, source, dir, name string) (string, error) {
	in, err := fsys.Open(source)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open source file",
			goerr.T(types.ErrTagIO),
			goerr.V("path", source))
	}
	defer in.Close()

	out, target, err := createUnique(fsys, dir, name)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", goerr.Wrap(err, "failed to copy file", append(discardCopy(fsys, target),
			goerr.T(types.ErrTagIO),
			goerr.V("source", source),
			goerr.V("destination", target))...)
	}
	if err := out.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close destination file", append(discardCopy(fsys, target),
			goerr.T(types.ErrTagIO),
			goerr.V("destination", target))...)
	}

	_ = in.Close()

	if err := fsys.Remove(source); err != nil {
		return "", goerr.Wrap(err, "failed to remove source after copy", append(discardCopy(fsys, target),
			goerr.T(types.ErrTagIO),
			goerr.V("source", source),
			goerr.V("destination", target))...)
	}
	return target, nil
}

// discardCopy removes an unfinished copy. When that fails the copy is left
// behind, and the returned options name it in the error.
func discardCopy(fsys interfaces.FileSystem, target string) []goerr.Option {
	if err := fsys.Remove(target); err != nil {
		return []goerr.Option{
			goerr.V("cleanup_error", err.Error()),
			goerr.V("leftover", target),
		}
	}
	return nil
}
