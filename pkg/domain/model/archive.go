package model

import "strings"

// ArchiveSuffix is the file suffix recognized as an archive, compared case-insensitively.
const ArchiveSuffix = ".zip"

// ArchiveEntry is an archive discovered in a source location. Name is unique
// within the location; Path is the handle used to open it.
type ArchiveEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Target returns the extraction target directory name of the archive.
func (a ArchiveEntry) Target() string {
	return TargetName(a.Name)
}

// IsArchiveName reports whether name ends with ".zip" in any letter case.
func IsArchiveName(name string) bool {
	n := len(ArchiveSuffix)
	return len(name) >= n && strings.EqualFold(name[len(name)-n:], ArchiveSuffix)
}

// TargetName strips a trailing ".zip" (case-insensitive) from an archive name.
func TargetName(archiveName string) string {
	if !IsArchiveName(archiveName) {
		return archiveName
	}
	return archiveName[:len(archiveName)-len(ArchiveSuffix)]
}

// ZipStatus is a snapshot of how many archives already have an extraction target.
type ZipStatus struct {
	Total    int `json:"total"`
	Unpacked int `json:"unpacked"`
	Pending  int `json:"pending"`
}

// NewZipStatus builds a status so that Unpacked + Pending == Total.
func NewZipStatus(total, unpacked int) ZipStatus {
	return ZipStatus{
		Total:    total,
		Unpacked: unpacked,
		Pending:  total - unpacked,
	}
}

// Complete reports whether every archive has been unpacked.
func (s ZipStatus) Complete() bool {
	return s.Total > 0 && s.Pending == 0
}
