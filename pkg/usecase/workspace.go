package usecase

import (
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// UnpackedDir is the directory under the library root holding extraction targets.
const UnpackedDir = "unpacked"

// Workspace binds the archive source and the library destination. Every
// stage receives it explicitly.
type Workspace struct {
	Archives   interfaces.FileSystem
	ArchiveDir string
	Library    interfaces.FileSystem
	Root       string
}

// Validate fails with a configuration error when a binding is missing.
func (ws *Workspace) Validate() error {
	if ws == nil || ws.Archives == nil || ws.Library == nil {
		return goerr.New("source and destination folders must be selected",
			goerr.T(types.ErrTagConfiguration))
	}
	return nil
}

// UnpackedRoot is <Root>/unpacked.
func (ws *Workspace) UnpackedRoot() string {
	return filepath.Join(ws.Root, UnpackedDir)
}

// TargetDir is <Root>/unpacked/<target> of an archive.
func (ws *Workspace) TargetDir(archiveName string) string {
	return filepath.Join(ws.UnpackedRoot(), model.TargetName(archiveName))
}

// ClassDir is the library directory of a media class.
func (ws *Workspace) ClassDir(class model.MediaClass) string {
	return filepath.Join(ws.Root, class.LibraryDir())
}
