package model

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// MediaClass is the coarse type of a file, derived from its extension.
type MediaClass int

const (
	MediaOther MediaClass = iota
	MediaImage
	MediaVideo
)

func (c MediaClass) String() string {
	switch c {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "other"
	}
}

// MarshalText encodes the class by name so it can be used as a JSON map key.
func (c MediaClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name.
func (c *MediaClass) UnmarshalText(text []byte) error {
	parsed, err := ParseMediaClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// LibraryDir is the directory name flattened files of the class are moved to.
func (c MediaClass) LibraryDir() string {
	switch c {
	case MediaImage:
		return "photos"
	case MediaVideo:
		return "videos"
	default:
		return "other"
	}
}

// ParseMediaClass accepts "image", "photo(s)", "video(s)" and "other".
func ParseMediaClass(s string) (MediaClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "images", "photo", "photos":
		return MediaImage, nil
	case "video", "videos":
		return MediaVideo, nil
	case "other":
		return MediaOther, nil
	default:
		return MediaOther, goerr.New("unknown file type (use image or video)",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("type", s))
	}
}

// NoExtension is the reporting label of a file without an extension.
const NoExtension = "<no-ext>"

// Extension returns the lower-cased final dotted suffix of name including the
// dot, or "" when the name has none. A leading dot without a further dot
// (".bashrc") does not start an extension.
func Extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(base[i:])
}

// ExtensionLabel is Extension with NoExtension substituted for "".
func ExtensionLabel(name string) string {
	if ext := Extension(name); ext != "" {
		return ext
	}
	return NoExtension
}

// DefaultImageExtensions and DefaultVideoExtensions are the reference
// classification. They are disjoint.
var (
	DefaultImageExtensions = []string{
		".jpg", ".jpeg", ".png", ".gif", ".heic", ".heif", ".webp", ".tiff",
		".tif", ".bmp", ".dng", ".cr2", ".cr3", ".nef", ".arw", ".raf",
		".rw2", ".jfif", ".avif", ".orf", ".srw", ".pef", ".jxl",
	}
	DefaultVideoExtensions = []string{
		".mp4", ".mov", ".m4v", ".avi", ".mkv", ".mts", ".m2ts", ".3gp",
		".3gpp", ".3g2", ".webm", ".mpg", ".mpeg", ".mpe", ".wmv", ".flv",
		".dv", ".ogv",
	}
)

// Classifier maps file names to a MediaClass from two disjoint extension sets.
type Classifier struct {
	images map[string]struct{}
	videos map[string]struct{}
}

var defaultClassifier = mustClassifier(DefaultImageExtensions, DefaultVideoExtensions)

// DefaultClassifier returns the classifier built from the reference sets.
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

func mustClassifier(images, videos []string) *Classifier {
	c, err := NewClassifier(images, videos)
	if err != nil {
		panic(err)
	}
	return c
}

// NewClassifier normalizes both extension lists (lower case, leading dot) and
// fails when an entry is empty or appears in both sets.
func NewClassifier(images, videos []string) (*Classifier, error) {
	imageSet, err := extensionSet(images)
	if err != nil {
		return nil, err
	}
	videoSet, err := extensionSet(videos)
	if err != nil {
		return nil, err
	}
	for ext := range imageSet {
		if _, ok := videoSet[ext]; ok {
			return nil, goerr.New("extension is classified as both image and video",
				goerr.T(types.ErrTagConfiguration),
				goerr.V("extension", ext))
		}
	}
	return &Classifier{images: imageSet, videos: videoSet}, nil
}

func extensionSet(exts []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(exts))
	for _, raw := range exts {
		ext := strings.ToLower(strings.TrimSpace(raw))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." {
			return nil, goerr.New("empty extension in classification",
				goerr.T(types.ErrTagConfiguration))
		}
		set[ext] = struct{}{}
	}
	return set, nil
}

// Classify returns the media class of filename.
func (c *Classifier) Classify(filename string) MediaClass {
	ext := Extension(filename)
	if ext == "" {
		return MediaOther
	}
	if _, ok := c.images[ext]; ok {
		return MediaImage
	}
	if _, ok := c.videos[ext]; ok {
		return MediaVideo
	}
	return MediaOther
}

// Extensions returns the sorted extensions of class.
func (c *Classifier) Extensions(class MediaClass) []string {
	var set map[string]struct{}
	switch class {
	case MediaImage:
		set = c.images
	case MediaVideo:
		set = c.videos
	default:
		return nil
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}
