package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/infra/store"
	"github.com/urfave/cli/v3"
)

// Store selects the backend keeping the pipeline cursor. Firestore wins over
// Cloud Storage, which wins over the local file.
type Store struct {
	File string

	FirestoreProjectID  string
	FirestoreDatabaseID string
	FirestoreDocument   string

	GCSBucket string
	GCSObject string
}

// Flags returns CLI flags for the session store
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "session-file",
			Usage:       "Session file path (default: <user config dir>/takeout/session.json)",
			Destination: &c.File,
			Sources:     cli.EnvVars("TAKEOUT_SESSION_FILE"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Store the session in Firestore of this project",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("TAKEOUT_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("TAKEOUT_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-document",
			Usage:       "Firestore document ID of the session",
			Destination: &c.FirestoreDocument,
			Sources:     cli.EnvVars("TAKEOUT_FIRESTORE_DOCUMENT"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Store the session in this Cloud Storage bucket",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("TAKEOUT_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-object",
			Usage:       "Cloud Storage object name of the session",
			Destination: &c.GCSObject,
			Sources:     cli.EnvVars("TAKEOUT_GCS_OBJECT"),
		},
	}
}

// Backend names the selected backend
func (c *Store) Backend() string {
	switch {
	case c.FirestoreProjectID != "":
		return "firestore"
	case c.GCSBucket != "":
		return "gcs"
	default:
		return "file"
	}
}

// New creates the session store. The returned func releases its client.
func (c *Store) New(ctx context.Context) (interfaces.SessionStore, func(), error) {
	switch c.Backend() {
	case "firestore":
		s, err := store.NewFirestore(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID, c.FirestoreDocument)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case "gcs":
		s, err := store.NewGCS(ctx, c.GCSBucket, c.GCSObject)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	path := c.File
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to locate user config directory; set --session-file")
		}
		path = filepath.Join(dir, "takeout", "session.json")
	}
	return store.NewFile(path), func() {}, nil
}
