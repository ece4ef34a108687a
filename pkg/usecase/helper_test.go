package usecase_test

import (
	"archive/zip"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

// writeTree creates files below dir. Keys are slash-separated relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		gt.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		gt.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

type zipEntry struct {
	name    string
	content string
}

// writeZip writes entries in the given order. Names ending with "/" become
// directory entries.
func writeZip(t *testing.T, path string, entries ...zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	gt.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		gt.NoError(t, err)
		if e.content != "" {
			_, err = w.Write([]byte(e.content))
			gt.NoError(t, err)
		}
	}
	gt.NoError(t, zw.Close())
}

// newWorkspace returns a workspace over two fresh directories using the
// native binding.
func newWorkspace(t *testing.T) *usecase.Workspace {
	t.Helper()
	base := t.TempDir()
	src := filepath.Join(base, "zips")
	dst := filepath.Join(base, "library")
	gt.NoError(t, os.MkdirAll(src, 0o755))
	gt.NoError(t, os.MkdirAll(dst, 0o755))

	native := fsys.NewOS()
	return &usecase.Workspace{
		Archives:   native,
		ArchiveDir: src,
		Library:    native,
		Root:       dst,
	}
}

// listFiles returns slash-separated relative paths of every file below dir.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	gt.NoError(t, err)
	slices.Sort(out)
	return out
}

// listDirs returns slash-separated relative paths of every directory below dir.
func listDirs(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	gt.NoError(t, err)
	slices.Sort(out)
	return out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	return string(data)
}

// removeDenied wraps a FileSystem and refuses to remove the listed paths.
type removeDenied struct {
	interfaces.FileSystem
	denied map[string]bool
}

func denyRemove(base interfaces.FileSystem, paths ...string) *removeDenied {
	denied := make(map[string]bool, len(paths))
	for _, p := range paths {
		denied[p] = true
	}
	return &removeDenied{FileSystem: base, denied: denied}
}

func (x *removeDenied) Remove(name string) error {
	if x.denied[name] {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
	}
	return x.FileSystem.Remove(name)
}
