package config

import (
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Paths holds the archive source and library destination folders
type Paths struct {
	Source      string
	Destination string
	Sandbox     bool
}

// Flags returns CLI flags for folder selection
func (c *Paths) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "src",
			Usage:       "Folder holding the exported .zip archives",
			Destination: &c.Source,
			Sources:     cli.EnvVars("TAKEOUT_SRC"),
		},
		&cli.StringFlag{
			Name:        "dst",
			Usage:       "Library root receiving unpacked/, photos/ and videos/",
			Destination: &c.Destination,
			Sources:     cli.EnvVars("TAKEOUT_DST"),
		},
		&cli.BoolFlag{
			Name:        "sandbox",
			Usage:       "Confine every file operation to the selected folders",
			Destination: &c.Sandbox,
			Sources:     cli.EnvVars("TAKEOUT_SANDBOX"),
		},
	}
}

// Apply fills folders missing from flags with values of the config file
func (c *Paths) Apply(file *File) {
	if file == nil {
		return
	}
	if c.Source == "" {
		c.Source = file.Paths.Source
	}
	if c.Destination == "" {
		c.Destination = file.Paths.Destination
	}
}

// Names returns the base names of the selected folders for display
func (c *Paths) Names() (string, string) {
	name := func(p string) string {
		if p == "" {
			return ""
		}
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.Base(abs)
		}
		return filepath.Base(p)
	}
	return name(c.Source), name(c.Destination)
}

func (c *Paths) bind(dir string) (interfaces.FileSystem, string, func(), error) {
	if !c.Sandbox {
		return fsys.NewOS(), dir, func() {}, nil
	}
	root, err := fsys.NewRoot(dir)
	if err != nil {
		return nil, "", nil, err
	}
	return root, ".", func() { _ = root.Close() }, nil
}

// Library binds only the destination folder
func (c *Paths) Library() (interfaces.FileSystem, string, func(), error) {
	if c.Destination == "" {
		return nil, "", nil, goerr.New("destination folder is required (--dst)",
			goerr.T(types.ErrTagConfiguration))
	}
	return c.bind(c.Destination)
}

// Tree binds dir, or the destination folder when dir is empty.
func (c *Paths) Tree(dir string) (interfaces.FileSystem, string, func(), error) {
	if dir == "" {
		return c.Library()
	}
	return c.bind(dir)
}

// Bindings binds whichever folders are set. Stages needing a missing folder
// fail later with a configuration error.
func (c *Paths) Bindings() (*usecase.Workspace, func(), error) {
	ws := &usecase.Workspace{}
	var closers []func()
	release := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if c.Source != "" {
		archives, dir, closer, err := c.bind(c.Source)
		if err != nil {
			return nil, nil, err
		}
		ws.Archives, ws.ArchiveDir = archives, dir
		closers = append(closers, closer)
	}
	if c.Destination != "" {
		library, root, closer, err := c.bind(c.Destination)
		if err != nil {
			release()
			return nil, nil, err
		}
		ws.Library, ws.Root = library, root
		closers = append(closers, closer)
	}
	return ws, release, nil
}

// Workspace binds both folders. With Sandbox set, each folder gets its own
// os.Root binding. The returned func releases the bindings.
func (c *Paths) Workspace() (*usecase.Workspace, func(), error) {
	if c.Source == "" {
		return nil, nil, goerr.New("source folder is required (--src)",
			goerr.T(types.ErrTagConfiguration))
	}
	if c.Destination == "" {
		return nil, nil, goerr.New("destination folder is required (--dst)",
			goerr.T(types.ErrTagConfiguration))
	}
	return c.Bindings()
}

// Resolve binds folders named on the command line into one filesystem so
// files can move between them. Without Sandbox the names are native paths.
// With Sandbox they are relative to the destination folder and must stay
// inside it.
func (c *Paths) Resolve(names ...string) (interfaces.FileSystem, []string, func(), error) {
	if !c.Sandbox {
		return fsys.NewOS(), names, func() {}, nil
	}

	for _, name := range names {
		if !filepath.IsLocal(name) {
			return nil, nil, nil, goerr.New("path must be relative to the destination folder in sandbox mode",
				goerr.T(types.ErrTagConfiguration),
				goerr.V("path", name))
		}
	}
	library, root, release, err := c.Library()
	if err != nil {
		return nil, nil, nil, err
	}
	resolved := make([]string, len(names))
	for i, name := range names {
		resolved[i] = filepath.Join(root, name)
	}
	return library, resolved, release, nil
}

// LibraryPath names a folder inside the destination in the form Resolve
// expects.
func (c *Paths) LibraryPath(name string) (string, error) {
	if c.Destination == "" {
		return "", goerr.New("destination folder is required (--dst)",
			goerr.T(types.ErrTagConfiguration))
	}
	if c.Sandbox {
		return name, nil
	}
	return filepath.Join(c.Destination, name), nil
}
