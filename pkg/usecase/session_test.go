package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/infra/store"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestSessionUseCase_LoadSaveReset(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSession(store.NewMemory(), usecase.WithClock(clock))

	s, err := uc.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.Position, model.StageSelectFolders)

	saved, err := uc.Save(ctx, &model.Session{ZipDirName: "zips", Position: model.StageFlatten})
	gt.NoError(t, err)
	gt.Equal(t, saved.Label, "Flatten")
	gt.True(t, saved.SavedAt.Equal(fixedNow))

	s, err = uc.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.ZipDirName, "zips")
	gt.Equal(t, s.Position, model.StageFlatten)

	_, err = uc.Save(ctx, &model.Session{Position: 0})
	gt.Error(t, err)

	gt.NoError(t, uc.Reset(ctx))
	s, err = uc.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.Position, model.StageSelectFolders)
}

func TestSessionUseCase_Overview(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	writeZip(t, filepath.Join(ws.ArchiveDir, "a.zip"), zipEntry{name: "a.jpg", content: "a"})

	st := store.NewMemory()
	uc := usecase.NewSession(st, usecase.WithWorkspace(ws, "zips", "library"), usecase.WithClock(clock))

	ov, err := uc.Overview(ctx)
	gt.NoError(t, err)
	gt.Equal(t, ov.Status, model.ZipStatus{Total: 1, Unpacked: 0, Pending: 1})
	gt.Nil(t, ov.Session)
	gt.Equal(t, ov.Suggested, model.StageUnpack)
	gt.True(t, ov.Eligible[model.StageUnpack])
	gt.Equal(t, ov.NextStep, usecase.NextStep(model.StageUnpack))

	_, err = usecase.UnpackMissing(ctx, ws, nil)
	gt.NoError(t, err)
	uc.Record(ctx, model.ActionUnpack)

	s, err := st.Get(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.Position, model.StageFlatten)
	gt.Equal(t, s.ZipDirName, "zips")
	gt.Equal(t, s.OutDirName, "library")
	gt.True(t, s.SavedAt.Equal(fixedNow))

	// cursor never moves backwards
	uc.Record(ctx, model.ActionValidate)
	s, err = st.Get(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.Position, model.StageFlatten)

	uc.Record(ctx, model.ActionCollapse)
	ov, err = uc.Overview(ctx)
	gt.NoError(t, err)
	gt.Equal(t, ov.Suggested, model.StageCleanLeftovers)
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context) (*model.Session, error) {
	return nil, errors.New("unreadable")
}
func (brokenStore) Put(ctx context.Context, s *model.Session) error { return errors.New("read-only") }
func (brokenStore) Delete(ctx context.Context) error                 { return errors.New("read-only") }

func TestSessionUseCase_BrokenStore(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	uc := usecase.NewSession(brokenStore{}, usecase.WithWorkspace(ws, "zips", "library"))

	// the overview is recomputed from the tree
	ov, err := uc.Overview(ctx)
	gt.NoError(t, err)
	gt.Equal(t, ov.Suggested, model.StageUnpack)

	// recording is best effort
	uc.Record(ctx, model.ActionUnpack)

	_, err = uc.Load(ctx)
	gt.Error(t, err)
}
