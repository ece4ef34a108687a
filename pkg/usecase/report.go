package usecase

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
	"github.com/rwcarlsen/goexif/exif"
)

const stageReport = "report"

// ReportOptions controls Report. A nil Classifier uses the default sets.
type ReportOptions struct {
	// EXIF decodes image files and buckets them by capture year.
	EXIF       bool
	Classifier *model.Classifier
}

// Report surveys the files below root without modifying anything.
func Report(ctx context.Context, fsys interfaces.FileSystem, root string, opts ReportOptions, progress model.ProgressFunc) (*model.LibraryReport, error) {
	if _, err := fsys.Stat(root); err != nil {
		return nil, goerr.Wrap(err, "report root is not accessible",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("root", root))
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = model.DefaultClassifier()
	}

	report := &model.LibraryReport{ByClass: map[model.MediaClass]int{}}
	extCounts := map[string]int{}
	yearCounts := map[int]int{}

	for rec := range Walk(fsys, root, "") {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "report interrupted")
		}

		report.Files++
		class := classifier.Classify(rec.Name)
		report.ByClass[class]++
		extCounts[model.ExtensionLabel(rec.Name)]++

		if opts.EXIF && class == model.MediaImage {
			if year, ok := captureYear(fsys, rec.Path()); ok {
				yearCounts[year]++
			} else {
				report.NoDate++
			}
		}
		progress.Report(stageReport, rec.Name, report.Files, 0)
	}

	for ext, n := range extCounts {
		report.Extensions = append(report.Extensions, model.ExtensionCount{Extension: ext, Count: n})
	}
	slices.SortFunc(report.Extensions, func(a, b model.ExtensionCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Extension, b.Extension)
	})

	for year, n := range yearCounts {
		report.Years = append(report.Years, model.YearCount{Year: year, Count: n})
	}
	slices.SortFunc(report.Years, func(a, b model.YearCount) int {
		return cmp.Compare(a.Year, b.Year)
	})

	logging.From(ctx).Info("Report finished",
		"files", report.Files,
		"extensions", len(report.Extensions),
		"exif", opts.EXIF,
	)
	return report, nil
}

// captureYear reads the EXIF capture date of an image. Years outside
// 1900..next year are treated as missing.
func captureYear(fsys interfaces.FileSystem, path string) (int, bool) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 0, false
	}

	if dt, err := x.DateTime(); err == nil {
		if year := dt.Year(); year > 1900 && year <= time.Now().Year()+1 {
			return year, true
		}
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil || len(s) < 10 || s[4] != ':' || s[7] != ':' {
			continue
		}
		if year, err := strconv.Atoi(s[:4]); err == nil && year > 1900 && year <= time.Now().Year()+1 {
			return year, true
		}
	}
	return 0, false
}
