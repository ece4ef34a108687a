package usecase

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// ListArchives returns the regular ".zip" files directly under dir, sorted by
// byte-wise name order.
func ListArchives(fsys interfaces.FileSystem, dir string) ([]model.ArchiveEntry, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list source directory",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("dir", dir))
	}

	var archives []model.ArchiveEntry
	for _, entry := range entries {
		if entry.IsDir() || !model.IsArchiveName(entry.Name()) {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		info, err := fsys.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		archives = append(archives, model.ArchiveEntry{
			Name: entry.Name(),
			Path: p,
			Size: info.Size(),
		})
	}

	slices.SortFunc(archives, func(a, b model.ArchiveEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return archives, nil
}

// Status counts archives whose extraction target directory exists. It never
// creates directories.
func Status(ws *Workspace) (model.ZipStatus, error) {
	archives, err := ListArchives(ws.Archives, ws.ArchiveDir)
	if err != nil {
		return model.ZipStatus{}, err
	}

	unpacked := 0
	for _, a := range archives {
		exists, err := dirExists(ws.Library, ws.TargetDir(a.Name))
		if err != nil {
			return model.ZipStatus{}, err
		}
		if exists {
			unpacked++
		}
	}
	return model.NewZipStatus(len(archives), unpacked), nil
}

func dirExists(fsys interfaces.FileSystem, name string) (bool, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to stat directory",
			goerr.T(types.ErrTagIO),
			goerr.V("dir", name))
	}
	return info.IsDir(), nil
}
