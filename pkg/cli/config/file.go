package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File is the optional TOML configuration file. Command line flags win over
// its values.
//
//	[paths]
//	source = "/mnt/export"
//	destination = "/mnt/library"
//
//	[classify]
//	image = [".jpg", ".png"]
//	video = [".mp4"]
//
//	[prune]
//	extensions = [".json", ".html"]
type File struct {
	Paths struct {
		Source      string `toml:"source"`
		Destination string `toml:"destination"`
	} `toml:"paths"`

	Classify struct {
		Image []string `toml:"image"`
		Video []string `toml:"video"`
	} `toml:"classify"`

	Prune struct {
		Extensions []string `toml:"extensions"`
	} `toml:"prune"`
}

// ConfigFile holds the path of the configuration file
type ConfigFile struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *ConfigFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("TAKEOUT_CONFIG"),
		},
	}
}

// Load reads the file. An unset path yields an empty configuration.
func (c *ConfigFile) Load() (*File, error) {
	if c.Path == "" {
		return &File{}, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("path", c.Path))
	}

	var file File
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("path", c.Path))
	}
	return &file, nil
}

// Classifier builds the extension classifier. A list left empty keeps the
// default set for that class.
func (f *File) Classifier() (*model.Classifier, error) {
	if f == nil || (len(f.Classify.Image) == 0 && len(f.Classify.Video) == 0) {
		return model.DefaultClassifier(), nil
	}

	images := f.Classify.Image
	if len(images) == 0 {
		images = model.DefaultImageExtensions
	}
	videos := f.Classify.Video
	if len(videos) == 0 {
		videos = model.DefaultVideoExtensions
	}
	return model.NewClassifier(images, videos)
}
