package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

func TestParseExtensions(t *testing.T) {
	exts, err := usecase.ParseExtensions(".JSON", ".html,.txt", " .json ")
	gt.NoError(t, err)
	gt.Equal(t, exts, []string{".json", ".html", ".txt"})

	for _, bad := range []string{"json", ".", "", ".json,txt"} {
		_, err := usecase.ParseExtensions(bad)
		gt.Error(t, err)
		gt.True(t, types.IsConfiguration(err))
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/IMG_1.jpg":      "1",
		"a/IMG_1.jpg.json": "{}",
		"b/metadata.JSON":  "{}",
		"b/notes.txt":      "n",
		"c/json":           "no extension",
	})
	native := fsys.NewOS()

	t.Run("dry run keeps files", func(t *testing.T) {
		report, err := usecase.Prune(ctx, native, root, []string{".json"}, usecase.PruneOptions{DryRun: true}, nil)
		gt.NoError(t, err)
		gt.Equal(t, report.Count(), 2)
		gt.A(t, listFiles(t, root)).Length(5)
	})

	report, err := usecase.Prune(ctx, native, root, []string{".json"}, usecase.PruneOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 2)
	gt.Equal(t, listFiles(t, root), []string{"a/IMG_1.jpg", "b/notes.txt", "c/json"})

	report, err = usecase.Prune(ctx, native, root, []string{".json"}, usecase.PruneOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 0)
}

func TestPrune_SingleFile(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x/y/z.json": "{}"})

	report, err := usecase.Prune(ctx, fsys.NewOS(), root, []string{".json"}, usecase.PruneOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 1)

	report, err = usecase.Prune(ctx, fsys.NewOS(), root, []string{".json"}, usecase.PruneOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 0)
}

func TestPrune_ContinuesAfterDeleteFailure(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/one.json": "{}",
		"b/two.json": "{}",
		"c/six.json": "{}",
		"c/keep.jpg": "jpg",
	})
	locked := filepath.Join(root, "b", "two.json")

	report, err := usecase.Prune(ctx, denyRemove(fsys.NewOS(), locked), root, []string{".json"}, usecase.PruneOptions{}, nil)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 2)
	gt.Equal(t, report.FailureCount(), 1)
	gt.Equal(t, report.Failed[0].Item, locked)
	gt.True(t, goerr.HasTag(report.Failed[0].Err, types.ErrTagIO))

	gt.Equal(t, listFiles(t, root), []string{"b/two.json", "c/keep.jpg"})
}
