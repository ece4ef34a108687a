package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
	"github.com/m-mizutani/takeout/pkg/utils/async"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// JobFunc is the body of a job. It reports progress through the given func.
type JobFunc func(ctx context.Context, progress model.ProgressFunc) (any, error)

// JobRunner runs at most one job at a time in the background.
type JobRunner struct {
	mu      sync.Mutex
	current *model.Job
	done    <-chan struct{}
	now     func() time.Time
}

func NewJobRunner() *JobRunner {
	return &JobRunner{now: time.Now}
}

// Start dispatches fn unless a job is still running, in which case it
// returns types.ErrBusy.
func (r *JobRunner) Start(ctx context.Context, action model.Action, fn JobFunc) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.State == model.JobRunning {
		return nil, goerr.Wrap(types.ErrBusy, "stage already running",
			goerr.V("running", string(r.current.Action)),
			goerr.V("requested", string(action)))
	}

	job := &model.Job{
		ID:        uuid.NewString(),
		Action:    action,
		Stage:     action.Stage(),
		State:     model.JobRunning,
		StartedAt: r.now().UTC(),
	}
	r.current = job

	started := *job
	logger := logging.From(ctx).With("job_id", job.ID, "action", string(action))
	ctx = logging.With(ctx, logger)

	r.done = async.Dispatch(ctx, string(action), func(ctx context.Context) error {
		defer func() {
			if rec := recover(); rec != nil {
				r.finish(job, nil, goerr.New("stage panicked", goerr.V("recover", rec)))
				panic(rec)
			}
		}()

		progress := func(p model.Progress) {
			r.mu.Lock()
			job.Progress = p
			r.mu.Unlock()
		}

		logger.Info("Job started")
		result, err := fn(ctx, progress)
		r.finish(job, result, err)
		if err != nil {
			return err
		}
		logger.Info("Job finished")
		return nil
	})

	return &started, nil
}

func (r *JobRunner) finish(job *model.Job, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := r.now().UTC()
	job.FinishedAt = &finished
	job.Result = result
	if err != nil {
		job.State = model.JobFailed
		job.Error = err.Error()
		return
	}
	job.State = model.JobSucceeded
}

// Current returns a copy of the latest job, or nil before the first start.
func (r *JobRunner) Current() *model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	copied := *r.current
	return &copied
}

// Wait blocks until the latest job finishes or ctx is done.
func (r *JobRunner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
