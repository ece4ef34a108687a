package interfaces

import (
	"context"

	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// SessionStore persists the single pipeline cursor.
type SessionStore interface {
	// Get returns nil without error when nothing is stored.
	Get(ctx context.Context) (*model.Session, error)
	Put(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context) error
}
