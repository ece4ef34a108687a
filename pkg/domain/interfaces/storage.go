package interfaces

import (
	"io"
	"io/fs"
)

// File is an opened file of a FileSystem. Archive extraction needs random
// access, so every binding returns seekable files.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// FileSystem is the capability set the pipeline needs from a directory tree.
// Paths use filepath syntax: native paths for the OS binding, paths
// relative to the root for a sandboxed binding.
type FileSystem interface {
	// ReadDir lists a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(name string) error
	Open(name string) (File, error)
	// Create creates a new file and fails if name already exists.
	Create(name string) (File, error)
	// OpenWrite creates or truncates name for writing.
	OpenWrite(name string) (File, error)
	// Remove deletes a file or an empty directory.
	Remove(name string) error
	// Abs resolves name to an absolute, symlink-free path for containment checks.
	Abs(name string) (string, error)
}
