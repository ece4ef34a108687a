package model

import "path/filepath"

// FileRecord is a file found by a tree walk. Dir is in the syntax of the
// filesystem binding; Segments are the path segments below the walk root.
type FileRecord struct {
	Name     string
	Dir      string
	Segments []string
	Size     int64
}

// Path returns the full path of the file.
func (r FileRecord) Path() string {
	return filepath.Join(r.Dir, r.Name)
}
