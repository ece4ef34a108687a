package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// SizeRatioThreshold flags targets whose extracted bytes are less than this
// share of the archive size.
const SizeRatioThreshold = 0.7

const stageValidate = "validate"

// Validate inspects every directory under <Root>/unpacked. Targets without
// files count as empty; targets with a matching non-empty archive get a size
// ratio and are flagged below SizeRatioThreshold. The result is advisory.
func Validate(ctx context.Context, ws *Workspace, progress model.ProgressFunc) (*model.ValidationReport, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx)

	archiveList, err := ListArchives(ws.Archives, ws.ArchiveDir)
	if err != nil {
		return nil, err
	}
	byTarget := make(map[string]model.ArchiveEntry, len(archiveList))
	for _, a := range archiveList {
		byTarget[a.Target()] = a
	}

	report := &model.ValidationReport{Threshold: SizeRatioThreshold}

	unpacked := ws.UnpackedRoot()
	exists, err := dirExists(ws.Library, unpacked)
	if err != nil {
		return nil, err
	}
	if !exists {
		return report, nil
	}

	entries, err := ws.Library.ReadDir(unpacked)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list extraction targets",
			goerr.T(types.ErrTagIO),
			goerr.V("dir", unpacked))
	}

	var targets []string
	for _, e := range entries {
		if e.IsDir() {
			targets = append(targets, e.Name())
		}
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "validation interrupted")
		}
		progress.Report(stageValidate, target, i, len(targets))

		files := 0
		var size int64
		for rec := range Walk(ws.Library, ws.TargetDir(target), "") {
			files++
			size += rec.Size
		}

		entry := model.SizeReport{
			Name:               target,
			ExtractedSizeBytes: size,
		}
		if archive, ok := byTarget[target]; ok {
			entry.Archive = archive.Name
			entry.ArchiveSizeBytes = archive.Size
		}

		if files == 0 {
			report.Empty++
			report.EmptyTargets = append(report.EmptyTargets, target)
		} else {
			report.WithData++
		}

		if entry.ArchiveSizeBytes > 0 {
			entry.Ratio = float64(entry.ExtractedSizeBytes) / float64(entry.ArchiveSizeBytes)
			if entry.Ratio < SizeRatioThreshold {
				report.SizeWarnings = append(report.SizeWarnings, entry)
			}
		}
		report.Entries = append(report.Entries, entry)
	}
	progress.Report(stageValidate, "", len(targets), len(targets))

	logger.Info("Validation finished",
		"with_data", report.WithData,
		"empty", report.Empty,
		"size_warnings", len(report.SizeWarnings),
	)
	return report, nil
}

// RemoveArchives deletes the named archives from the source directory. Names
// not present in the inventory are reported as failures.
func RemoveArchives(ctx context.Context, ws *Workspace, names []string) (*model.BatchReport, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx)

	archiveList, err := ListArchives(ws.Archives, ws.ArchiveDir)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.ArchiveEntry, len(archiveList))
	for _, a := range archiveList {
		byName[a.Name] = a
	}

	report := &model.BatchReport{}
	for _, name := range names {
		entry, ok := byName[name]
		if !ok {
			report.Fail(name, goerr.New("archive not found in source directory",
				goerr.T(types.ErrTagIO),
				goerr.V("archive", name)))
			continue
		}
		if err := ws.Archives.Remove(entry.Path); err != nil {
			report.Fail(name, goerr.Wrap(err, "failed to remove archive", goerr.T(types.ErrTagIO)))
			continue
		}
		logger.Debug("Removed archive", "archive", name)
		report.Succeed(name)
	}
	return report, nil
}
