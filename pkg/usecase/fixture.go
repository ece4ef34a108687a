package usecase

import (
	"archive/zip"
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// fixtureModTime is stamped on every entry so identical input yields
// byte-identical archives.
var fixtureModTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// BuildFixture writes a ZIP archive to zipPath on out containing every file
// below srcDir on src. Entry names are "/"-joined relative paths in byte-wise
// order. It returns the number of entries written.
func BuildFixture(ctx context.Context, src interfaces.FileSystem, srcDir string, out interfaces.FileSystem, zipPath string) (int, error) {
	if _, err := src.Stat(srcDir); err != nil {
		return 0, goerr.Wrap(err, "fixture source is not accessible",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("source", srcDir))
	}

	var files []model.FileRecord
	for rec := range Walk(src, srcDir, "") {
		files = append(files, rec)
	}
	slices.SortFunc(files, func(a, b model.FileRecord) int {
		return strings.Compare(strings.Join(a.Segments, "/"), strings.Join(b.Segments, "/"))
	})

	w, err := out.OpenWrite(zipPath)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create fixture archive",
			goerr.T(types.ErrTagIO),
			goerr.V("path", zipPath))
	}

	zw := zip.NewWriter(w)
	for _, rec := range files {
		if err := ctx.Err(); err != nil {
			_ = w.Close()
			return 0, goerr.Wrap(err, "fixture build interrupted")
		}
		if err := addFixtureEntry(zw, src, rec); err != nil {
			_ = w.Close()
			return 0, err
		}
	}

	if err := zw.Close(); err != nil {
		_ = w.Close()
		return 0, goerr.Wrap(err, "failed to finalize fixture archive", goerr.T(types.ErrTagIO))
	}
	if err := w.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to close fixture archive", goerr.T(types.ErrTagIO))
	}

	logging.From(ctx).Info("Fixture archive written", "path", zipPath, "entries", len(files))
	return len(files), nil
}

func addFixtureEntry(zw *zip.Writer, src interfaces.FileSystem, rec model.FileRecord) error {
	name := strings.Join(rec.Segments, "/")

	in, err := src.Open(rec.Path())
	if err != nil {
		return goerr.Wrap(err, "failed to open fixture source file",
			goerr.T(types.ErrTagIO),
			goerr.V("path", rec.Path()))
	}
	defer in.Close()

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: fixtureModTime,
	}
	hdr.SetMode(0o644)

	entry, err := zw.CreateHeader(hdr)
	if err != nil {
		return goerr.Wrap(err, "failed to add fixture entry", goerr.V("entry", name))
	}
	if _, err := io.Copy(entry, in); err != nil {
		return goerr.Wrap(err, "failed to write fixture entry",
			goerr.T(types.ErrTagIO),
			goerr.V("entry", name))
	}
	return nil
}
