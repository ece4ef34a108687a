package usecase

import (
	"context"

	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// StageUseCase starts pipeline actions as background jobs and records them in
// the session cursor.
type StageUseCase struct {
	pipeline *Pipeline
	session  *SessionUseCase
	runner   *JobRunner
}

var _ interfaces.StageUseCase = (*StageUseCase)(nil)

// NewStage builds a StageUseCase. session may be nil.
func NewStage(pipeline *Pipeline, session *SessionUseCase, runner *JobRunner) *StageUseCase {
	if runner == nil {
		runner = NewJobRunner()
	}
	return &StageUseCase{
		pipeline: pipeline,
		session:  session,
		runner:   runner,
	}
}

// Start checks the parameters synchronously, then runs the action in the
// background.
func (uc *StageUseCase) Start(ctx context.Context, action model.Action, params model.StageParams) (*model.Job, error) {
	if err := uc.pipeline.Check(action, params); err != nil {
		return nil, err
	}

	return uc.runner.Start(ctx, action, func(ctx context.Context, progress model.ProgressFunc) (any, error) {
		result, err := uc.pipeline.Run(ctx, action, params, progress)
		if uc.session != nil {
			uc.session.Record(ctx, action)
		}
		return result, err
	})
}

func (uc *StageUseCase) Current() *model.Job {
	return uc.runner.Current()
}

// Wait blocks until the running job, if any, finishes.
func (uc *StageUseCase) Wait(ctx context.Context) error {
	return uc.runner.Wait(ctx)
}
