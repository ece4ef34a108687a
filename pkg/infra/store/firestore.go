package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	firestoreCollection = "takeout_sessions"
	defaultDocumentID   = "current"
)

// Firestore stores the session as a single document.
type Firestore struct {
	client *firestore.Client
	doc    *firestore.DocumentRef
}

var _ interfaces.SessionStore = (*Firestore)(nil)

// NewFirestore connects to the database. An empty databaseID selects the
// default database; an empty docID selects "current".
func NewFirestore(ctx context.Context, projectID, databaseID, docID string) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if docID == "" {
		docID = defaultDocumentID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{
		client: client,
		doc:    client.Collection(firestoreCollection).Doc(docID),
	}, nil
}

func (x *Firestore) Close() error {
	return x.client.Close()
}

func (x *Firestore) Get(ctx context.Context) (*model.Session, error) {
	snap, err := x.doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get session document", goerr.V("doc", x.doc.Path))
	}

	var session model.Session
	if err := snap.DataTo(&session); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session document", goerr.V("doc", x.doc.Path))
	}
	return &session, nil
}

func (x *Firestore) Put(ctx context.Context, session *model.Session) error {
	if _, err := x.doc.Set(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to put session document", goerr.V("doc", x.doc.Path))
	}
	return nil
}

func (x *Firestore) Delete(ctx context.Context) error {
	if _, err := x.doc.Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to delete session document", goerr.V("doc", x.doc.Path))
	}
	return nil
}
