package usecase

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/mholt/archives"
)

const stageUnpack = "unpack"

// UnpackMissing extracts every archive whose target directory does not exist
// yet. The existence of the target directory is the only completeness marker:
// a partially extracted target is skipped until Reextract repairs it. A
// failing archive is recorded and the batch continues. The context is checked
// between archives only.
func UnpackMissing(ctx context.Context, ws *Workspace, progress model.ProgressFunc) (*model.UnpackReport, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx)

	archiveList, err := ListArchives(ws.Archives, ws.ArchiveDir)
	if err != nil {
		return nil, err
	}

	report := &model.UnpackReport{}
	for _, entry := range archiveList {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "unpack interrupted")
		}

		target := ws.TargetDir(entry.Name)
		exists, err := dirExists(ws.Library, target)
		if err != nil {
			report.Failed = append(report.Failed, model.ItemFailure{Item: entry.Name, Err: err})
			continue
		}
		if exists {
			logger.Debug("Skipping already unpacked archive", "archive", entry.Name, "target", target)
			report.Skipped = append(report.Skipped, entry.Name)
			continue
		}

		if err := extractArchive(ctx, ws, entry, target, progress); err != nil {
			logger.Warn("Failed to unpack archive", "archive", entry.Name, "error", err)
			report.Failed = append(report.Failed, model.ItemFailure{Item: entry.Name, Err: err})
			continue
		}
		report.Extracted = append(report.Extracted, entry.Name)
	}

	logger.Info("Unpack finished",
		"extracted", len(report.Extracted),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

// Reextract extracts the named archives again over their existing target
// directories, overwriting files.
func Reextract(ctx context.Context, ws *Workspace, names []string, progress model.ProgressFunc) (*model.UnpackReport, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx)

	archiveList, err := ListArchives(ws.Archives, ws.ArchiveDir)
	if err != nil {
		return nil, err
	}

	report := &model.UnpackReport{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "re-extract interrupted")
		}

		idx := slices.IndexFunc(archiveList, func(a model.ArchiveEntry) bool { return a.Name == name })
		if idx < 0 {
			report.Failed = append(report.Failed, model.ItemFailure{
				Item: name,
				Err: goerr.New("archive not found in source directory",
					goerr.T(types.ErrTagIO),
					goerr.V("archive", name)),
			})
			continue
		}

		entry := archiveList[idx]
		if err := extractArchive(ctx, ws, entry, ws.TargetDir(entry.Name), progress); err != nil {
			logger.Warn("Failed to re-extract archive", "archive", entry.Name, "error", err)
			report.Failed = append(report.Failed, model.ItemFailure{Item: entry.Name, Err: err})
			continue
		}
		report.Extracted = append(report.Extracted, entry.Name)
	}
	return report, nil
}

func extractArchive(ctx context.Context, ws *Workspace, entry model.ArchiveEntry, target string, progress model.ProgressFunc) error {
	logger := logging.From(ctx)

	src, err := ws.Archives.Open(entry.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("archive", entry.Name))
	}
	defer src.Close()

	// A started archive runs to completion; cancellation is observed between archives.
	extractCtx := context.WithoutCancel(ctx)
	format := archives.Zip{}

	total := 0
	if err := format.Extract(extractCtx, src, func(ctx context.Context, f archives.FileInfo) error {
		total++
		return nil
	}); err != nil {
		return goerr.Wrap(err, "failed to read archive",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("archive", entry.Name))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return goerr.Wrap(err, "failed to rewind archive",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("archive", entry.Name))
	}

	if err := ws.Library.MkdirAll(target); err != nil {
		return goerr.Wrap(err, "failed to create extraction target",
			goerr.T(types.ErrTagIO),
			goerr.V("target", target))
	}

	logger.Info("Unpacking archive", "archive", entry.Name, "entries", total, "target", target)

	denom := max(total, 1)
	done := 0
	progress.Report(stageUnpack, entry.Name, done, denom)

	handler := func(ctx context.Context, f archives.FileInfo) error {
		if err := writeEntry(ws, target, f); err != nil {
			return err
		}
		done++
		progress.Report(stageUnpack, entry.Name, done, denom)
		return nil
	}
	if err := format.Extract(extractCtx, src, handler); err != nil {
		return goerr.Wrap(err, "failed to extract archive",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("archive", entry.Name))
	}
	return nil
}

// entrySegments splits an entry name on "/" and drops empty and "." segments.
// Names containing ".." are rejected.
func entrySegments(name string) ([]string, error) {
	var segments []string
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return nil, goerr.New("archive entry escapes extraction target",
				goerr.T(types.ErrTagArchiveRead),
				goerr.V("entry", name))
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func writeEntry(ws *Workspace, target string, f archives.FileInfo) error {
	segments, err := entrySegments(f.NameInArchive)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}

	dest := filepath.Join(append([]string{target}, segments...)...)
	if !filepath.IsLocal(filepath.Join(segments...)) {
		return goerr.New("archive entry escapes extraction target",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("entry", f.NameInArchive))
	}

	if f.IsDir() {
		if err := ws.Library.MkdirAll(dest); err != nil {
			return goerr.Wrap(err, "failed to create directory", goerr.T(types.ErrTagIO))
		}
		return nil
	}
	if f.Mode()&fs.ModeSymlink != 0 {
		return nil
	}

	if err := ws.Library.MkdirAll(filepath.Dir(dest)); err != nil {
		return goerr.Wrap(err, "failed to create parent directory", goerr.T(types.ErrTagIO))
	}

	reader, err := f.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open archive entry",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("entry", f.NameInArchive))
	}
	defer reader.Close()

	writer, err := ws.Library.OpenWrite(dest)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.T(types.ErrTagIO))
	}
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write archive entry",
			goerr.T(types.ErrTagArchiveRead),
			goerr.V("entry", f.NameInArchive),
			goerr.V("path", dest))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file", goerr.T(types.ErrTagIO), goerr.V("path", dest))
	}
	return nil
}
