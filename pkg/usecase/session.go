package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// SessionUseCase keeps the advisory pipeline cursor in a SessionStore and
// reconciles it with the live tree.
type SessionUseCase struct {
	store      interfaces.SessionStore
	ws         *Workspace
	sourceName string
	destName   string
	now        func() time.Time
}

var _ interfaces.SessionUseCase = (*SessionUseCase)(nil)

type SessionOption func(*SessionUseCase)

// WithWorkspace binds the selected folders. Names are stored in the cursor for
// display.
func WithWorkspace(ws *Workspace, sourceName, destName string) SessionOption {
	return func(uc *SessionUseCase) {
		uc.ws = ws
		uc.sourceName = sourceName
		uc.destName = destName
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(uc *SessionUseCase) {
		uc.now = now
	}
}

func NewSession(store interfaces.SessionStore, opts ...SessionOption) *SessionUseCase {
	uc := &SessionUseCase{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *SessionUseCase) fresh() *model.Session {
	return &model.Session{
		ZipDirName: uc.sourceName,
		OutDirName: uc.destName,
		Position:   model.StageSelectFolders,
		Label:      model.StageSelectFolders.Label(),
	}
}

// Load returns the stored cursor, or a fresh one when nothing is stored.
func (uc *SessionUseCase) Load(ctx context.Context) (*model.Session, error) {
	session, err := uc.store.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load session")
	}
	if session == nil {
		return uc.fresh(), nil
	}
	return session, nil
}

// Save validates and stores the cursor with the current time.
func (uc *SessionUseCase) Save(ctx context.Context, session *model.Session) (*model.Session, error) {
	saved := *session
	if err := saved.Validate(); err != nil {
		return nil, err
	}
	saved.SavedAt = uc.now().UTC()
	if err := uc.store.Put(ctx, &saved); err != nil {
		return nil, goerr.Wrap(err, "failed to save session")
	}
	return &saved, nil
}

func (uc *SessionUseCase) Reset(ctx context.Context) error {
	if err := uc.store.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to reset session")
	}
	return nil
}

func (uc *SessionUseCase) observe() (Observation, error) {
	obs := Observation{}
	if uc.ws == nil {
		return obs, nil
	}
	obs.SourceSelected = uc.ws.Archives != nil
	obs.DestinationSelected = uc.ws.Library != nil
	if !obs.SourceSelected || !obs.DestinationSelected {
		return obs, nil
	}

	status, err := Status(uc.ws)
	if err != nil {
		return obs, err
	}
	obs.Status = status
	return obs, nil
}

// Overview reports the tree status, the stored cursor and the stage the
// cursor would advance to. A cursor that cannot be read is ignored.
func (uc *SessionUseCase) Overview(ctx context.Context) (*model.Overview, error) {
	obs, err := uc.observe()
	if err != nil {
		return nil, err
	}

	stored, err := uc.store.Get(ctx)
	if err != nil {
		logging.From(ctx).Warn("Ignoring unreadable session", "error", err)
		stored = nil
	}

	suggested := Advance(stored, obs)
	return &model.Overview{
		Status:    obs.Status,
		Session:   stored,
		Suggested: suggested,
		Eligible:  Eligible(obs),
		NextStep:  NextStep(suggested),
	}, nil
}

// Record moves the cursor after an action ran. Failures only get logged since
// the cursor is advisory.
func (uc *SessionUseCase) Record(ctx context.Context, action model.Action) {
	logger := logging.From(ctx)

	stored, err := uc.store.Get(ctx)
	if err != nil {
		logger.Warn("Ignoring unreadable session", "error", err)
		stored = nil
	}

	obs, err := uc.observe()
	if err != nil {
		logger.Warn("Failed to observe tree for session", "error", err)
	}

	next := uc.fresh()
	if stored != nil {
		next = stored
	}
	if uc.sourceName != "" {
		next.ZipDirName = uc.sourceName
	}
	if uc.destName != "" {
		next.OutDirName = uc.destName
	}

	entered, err := Enter(*next, max(Advance(stored, obs), action.Stage()), uc.now().UTC())
	if err != nil {
		logger.Warn("Failed to advance session", "error", err)
		return
	}
	if err := uc.store.Put(ctx, &entered); err != nil {
		logger.Warn("Failed to store session", "error", err)
	}
}
