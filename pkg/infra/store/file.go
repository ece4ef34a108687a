package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// File stores the session as a JSON document on the local disk.
type File struct {
	path string
}

var _ interfaces.SessionStore = (*File)(nil)

func NewFile(path string) *File {
	return &File{path: path}
}

func (x *File) Get(ctx context.Context) (*model.Session, error) {
	raw, err := os.ReadFile(x.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read session file", goerr.V("path", x.path))
	}

	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session file", goerr.V("path", x.path))
	}
	return &session, nil
}

// Put writes to a temporary file first and renames it over the target.
func (x *File) Put(ctx context.Context, session *model.Session) error {
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode session")
	}

	dir := filepath.Dir(x.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return goerr.Wrap(err, "failed to create session directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary session file", goerr.V("dir", dir))
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write session file", goerr.V("path", tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close session file", goerr.V("path", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), x.path); err != nil {
		return goerr.Wrap(err, "failed to replace session file", goerr.V("path", x.path))
	}
	return nil
}

func (x *File) Delete(ctx context.Context) error {
	if err := os.Remove(x.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to delete session file", goerr.V("path", x.path))
	}
	return nil
}
