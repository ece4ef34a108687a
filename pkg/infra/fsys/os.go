package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// OS is the native filesystem binding.
type OS struct{}

var _ interfaces.FileSystem = (*OS)(nil)

// NewOS returns the native filesystem binding.
func NewOS() *OS {
	return &OS{}
}

func (x *OS) ReadDir(name string) ([]fs.DirEntry, error) {
	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", name))
	}
	return entries, nil
}

func (x *OS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (x *OS) MkdirAll(name string) error {
	if err := os.MkdirAll(name, dirPerm); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", name))
	}
	return nil
}

func (x *OS) Open(name string) (interfaces.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open file", goerr.V("path", name))
	}
	return f, nil
}

func (x *OS) Create(name string) (interfaces.File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create file", goerr.V("path", name))
	}
	return f, nil
}

func (x *OS) OpenWrite(name string) (interfaces.File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open file for writing", goerr.V("path", name))
	}
	return f, nil
}

func (x *OS) Remove(name string) error {
	if err := os.Remove(name); err != nil {
		return goerr.Wrap(err, "failed to remove", goerr.V("path", name))
	}
	return nil
}

func (x *OS) Abs(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve absolute path", goerr.V("path", name))
	}
	return resolveExisting(abs), nil
}

// resolveExisting evaluates symlinks of the longest existing prefix of an
// absolute path and appends the remaining, not yet created, elements.
func resolveExisting(abs string) string {
	var rest []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return abs
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		rest = append(rest, filepath.Base(cur))
		cur = parent
	}
}
