package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

func TestCollapse(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	for _, d := range []string{"a/b/c/d", "e", "f/g", "h/i"} {
		gt.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	writeTree(t, root, map[string]string{
		"f/keep.txt":   "k",
		"h/i/left.xmp": "x",
		"h/README":     "r",
	})

	report, err := usecase.Collapse(ctx, fsys.NewOS(), root)
	gt.NoError(t, err)
	// a/b/c/d, a/b/c, a/b, a, e, f/g
	gt.Equal(t, report.Count(), 6)
	gt.Equal(t, listDirs(t, root), []string{"f", "h", "h/i"})
	gt.Equal(t, report.Remaining, 4)
	gt.Equal(t, report.TopExtensions, []string{".txt", "<no-ext>", ".xmp"})

	again, err := usecase.Collapse(ctx, fsys.NewOS(), root)
	gt.NoError(t, err)
	gt.Equal(t, again.Count(), 0)
}

func TestCollapse_RootIsKept(t *testing.T) {
	root := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(root, "x", "y"), 0o755))

	report, err := usecase.Collapse(context.Background(), fsys.NewOS(), root)
	gt.NoError(t, err)
	gt.Equal(t, report.Count(), 2)
	gt.Equal(t, report.Remaining, 0)

	info, err := os.Stat(root)
	gt.NoError(t, err)
	gt.True(t, info.IsDir())
}

func TestCollapse_MissingRoot(t *testing.T) {
	_, err := usecase.Collapse(context.Background(), fsys.NewOS(), filepath.Join(t.TempDir(), "missing"))
	gt.Error(t, err)
}

func TestCollapse_ContinuesAfterRemoveFailure(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	for _, d := range []string{"locked/x", "ok/y"} {
		gt.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	writeTree(t, root, map[string]string{"keep/file.txt": "data"})
	locked := filepath.Join(root, "locked", "x")

	report, err := usecase.Collapse(ctx, denyRemove(fsys.NewOS(), locked), root)
	gt.NoError(t, err)
	gt.Equal(t, report.FailureCount(), 1)
	gt.Equal(t, report.Failed[0].Item, locked)
	gt.Equal(t, report.Succeeded, []string{
		filepath.Join(root, "ok", "y"),
		filepath.Join(root, "ok"),
	})

	gt.Equal(t, listDirs(t, root), []string{"keep", "locked", "locked/x"})
}
