package usecase

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Walk yields every file below root depth-first, in name order within a
// directory. When exclude is not empty, the subtree at or below it is pruned
// before descending. Directories that cannot be listed are skipped. Each call
// starts a fresh traversal.
func Walk(fsys interfaces.FileSystem, root, exclude string) iter.Seq[model.FileRecord] {
	return func(yield func(model.FileRecord) bool) {
		excludeAbs := ""
		if exclude != "" {
			if abs, err := fsys.Abs(exclude); err == nil {
				excludeAbs = abs
			}
		}
		walkDir(fsys, root, nil, excludeAbs, yield)
	}
}

func walkDir(fsys interfaces.FileSystem, dir string, segments []string, excludeAbs string, yield func(model.FileRecord) bool) bool {
	if excludeAbs != "" {
		if abs, err := fsys.Abs(dir); err == nil && isWithin(abs, excludeAbs) {
			return true
		}
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return true
	}

	for _, entry := range entries {
		name := entry.Name()
		p := filepath.Join(dir, name)
		segs := append(segments[:len(segments):len(segments)], name)

		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if entry.IsDir() {
			if !walkDir(fsys, p, segs, excludeAbs, yield) {
				return false
			}
			continue
		}

		info, err := fsys.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		rec := model.FileRecord{
			Name:     name,
			Dir:      dir,
			Segments: segs,
			Size:     info.Size(),
		}
		if !yield(rec) {
			return false
		}
	}
	return true
}

// isWithin reports whether path equals base or lies below it. Both must be
// cleaned absolute paths.
func isWithin(path, base string) bool {
	if path == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// EnsureOutside fails with a configuration error when destination equals
// source or is nested inside it.
func EnsureOutside(fsys interfaces.FileSystem, source, destination string) error {
	srcAbs, err := fsys.Abs(source)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve source",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("source", source))
	}
	dstAbs, err := fsys.Abs(destination)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve destination",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("destination", destination))
	}

	if isWithin(dstAbs, srcAbs) {
		return goerr.New("destination must not be the source or inside it",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("source", srcAbs),
			goerr.V("destination", dstAbs))
	}
	return nil
}
