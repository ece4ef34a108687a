package interfaces

import (
	"context"

	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// SessionUseCase manages the pipeline cursor.
type SessionUseCase interface {
	// Load returns the stored cursor, or a fresh one at the first stage.
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) (*model.Session, error)
	Reset(ctx context.Context) error
	// Overview combines the live tree status with the stored cursor.
	Overview(ctx context.Context) (*model.Overview, error)
}

// StageUseCase starts pipeline stages in the background, one at a time.
type StageUseCase interface {
	Start(ctx context.Context, action model.Action, params model.StageParams) (*model.Job, error)
	// Current returns a copy of the latest job, or nil before any start.
	Current() *model.Job
}
