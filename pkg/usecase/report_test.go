package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

func TestReport(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"photos/a.jpg":      "not really a jpeg",
		"photos/b.JPG":      "not really a jpeg",
		"photos/c.png":      "png",
		"videos/d.mp4":      "mp4",
		"unpacked/e.json":   "{}",
		"unpacked/f.json":   "{}",
		"unpacked/g.json":   "{}",
		"unpacked/README":   "r",
		"unpacked/.nomedia": "",
	})

	report, err := usecase.Report(ctx, fsys.NewOS(), root, usecase.ReportOptions{EXIF: true}, nil)
	gt.NoError(t, err)

	gt.Equal(t, report.Files, 9)
	gt.Equal(t, report.ByClass[model.MediaImage], 3)
	gt.Equal(t, report.ByClass[model.MediaVideo], 1)
	gt.Equal(t, report.ByClass[model.MediaOther], 5)
	gt.Equal(t, report.Extensions, []model.ExtensionCount{
		{Extension: ".json", Count: 3},
		{Extension: ".jpg", Count: 2},
		{Extension: "<no-ext>", Count: 2},
		{Extension: ".mp4", Count: 1},
		{Extension: ".png", Count: 1},
	})
	// none of the images carry EXIF data
	gt.Equal(t, report.NoDate, 3)
	gt.A(t, report.Years).Length(0)
}

func TestReport_WithoutEXIF(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.jpg": "x"})

	report, err := usecase.Report(context.Background(), fsys.NewOS(), root, usecase.ReportOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Files, 1)
	gt.Equal(t, report.NoDate, 0)
}
