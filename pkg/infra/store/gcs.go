package store

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

const defaultObjectName = "takeout/session.json"

// GCS stores the session as one JSON object in a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	obj    *storage.ObjectHandle
	bucket string
	name   string
}

var _ interfaces.SessionStore = (*GCS)(nil)

func NewGCS(ctx context.Context, bucket, object string) (*GCS, error) {
	if object == "" {
		object = defaultObjectName
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &GCS{
		client: client,
		obj:    client.Bucket(bucket).Object(object),
		bucket: bucket,
		name:   object,
	}, nil
}

func (x *GCS) Close() error {
	return x.client.Close()
}

func (x *GCS) Get(ctx context.Context) (*model.Session, error) {
	r, err := x.obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open session object",
			goerr.V("bucket", x.bucket), goerr.V("object", x.name))
	}
	defer r.Close()

	var session model.Session
	if err := json.NewDecoder(r).Decode(&session); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session object",
			goerr.V("bucket", x.bucket), goerr.V("object", x.name))
	}
	return &session, nil
}

func (x *GCS) Put(ctx context.Context, session *model.Session) error {
	w := x.obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(session); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write session object",
			goerr.V("bucket", x.bucket), goerr.V("object", x.name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize session object",
			goerr.V("bucket", x.bucket), goerr.V("object", x.name))
	}
	return nil
}

func (x *GCS) Delete(ctx context.Context) error {
	if err := x.obj.Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete session object",
			goerr.V("bucket", x.bucket), goerr.V("object", x.name))
	}
	return nil
}
