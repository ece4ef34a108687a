package fsys

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Root is a sandboxed binding on top of os.Root. Paths are relative to the
// root directory and cannot escape it, including through symlinks.
type Root struct {
	dir  string
	root *os.Root
}

var _ interfaces.FileSystem = (*Root)(nil)

// NewRoot opens dir as a sandbox. The directory must exist.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve sandbox directory",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("dir", dir))
	}
	abs = resolveExisting(abs)

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sandbox directory",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("dir", dir))
	}
	return &Root{dir: abs, root: root}, nil
}

// Close releases the root handle.
func (x *Root) Close() error {
	return x.root.Close()
}

// Dir returns the resolved directory the sandbox is bound to.
func (x *Root) Dir() string {
	return x.dir
}

func (x *Root) local(name string) (string, error) {
	if name == "" || name == "." {
		return ".", nil
	}
	clean := filepath.Clean(name)
	if !filepath.IsLocal(clean) {
		return "", goerr.New("path escapes sandbox",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("path", name),
			goerr.V("root", x.dir))
	}
	return clean, nil
}

func (x *Root) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := x.local(name)
	if err != nil {
		return nil, err
	}
	f, err := x.root.Open(p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open directory", goerr.V("dir", name))
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", name))
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

func (x *Root) Stat(name string) (fs.FileInfo, error) {
	p, err := x.local(name)
	if err != nil {
		return nil, err
	}
	return x.root.Stat(p)
}

func (x *Root) MkdirAll(name string) error {
	p, err := x.local(name)
	if err != nil {
		return err
	}
	if err := x.root.MkdirAll(p, dirPerm); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", name))
	}
	return nil
}

func (x *Root) Open(name string) (interfaces.File, error) {
	p, err := x.local(name)
	if err != nil {
		return nil, err
	}
	f, err := x.root.Open(p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open file", goerr.V("path", name))
	}
	return f, nil
}

func (x *Root) Create(name string) (interfaces.File, error) {
	return x.openFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL)
}

func (x *Root) OpenWrite(name string) (interfaces.File, error) {
	return x.openFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC)
}

func (x *Root) openFile(name string, flag int) (interfaces.File, error) {
	p, err := x.local(name)
	if err != nil {
		return nil, err
	}
	f, err := x.root.OpenFile(p, flag, filePerm)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create file", goerr.V("path", name))
	}
	return f, nil
}

func (x *Root) Remove(name string) error {
	p, err := x.local(name)
	if err != nil {
		return err
	}
	if p == "." {
		return goerr.New("refusing to remove sandbox root", goerr.V("root", x.dir))
	}
	if err := x.root.Remove(p); err != nil {
		return goerr.Wrap(err, "failed to remove", goerr.V("path", name))
	}
	return nil
}

func (x *Root) Abs(name string) (string, error) {
	p, err := x.local(name)
	if err != nil {
		return "", err
	}
	return resolveExisting(filepath.Join(x.dir, p)), nil
}
