package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Version is the application version. Overridden at build time with
// -ldflags "-X github.com/m-mizutani/takeout/pkg/domain/types.Version=...".
var Version = "0.1.0-dev"

// Error kinds. Configuration errors fail fast before any mutation; archive read
// and I/O errors are isolated to a single item of a batch.
var (
	ErrTagConfiguration = goerr.NewTag("configuration")
	ErrTagArchiveRead   = goerr.NewTag("archive_read")
	ErrTagIO            = goerr.NewTag("io")
)

// ErrBusy is returned when a stage is started while another one is running.
var ErrBusy = errors.New("another pipeline stage is already running")

// IsConfiguration reports whether err carries the configuration tag.
func IsConfiguration(err error) bool {
	return goerr.HasTag(err, ErrTagConfiguration)
}

// IsArchiveRead reports whether err carries the archive read tag.
func IsArchiveRead(err error) bool {
	return goerr.HasTag(err, ErrTagArchiveRead)
}
