package async

import (
	"context"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine. The handler context keeps the
// values of ctx, including its logger tagged with name, but not its
// cancellation. Panics and returned errors are logged and reported to Sentry.
// The returned channel is closed once handler has returned or panicked.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) <-chan struct{} {
	logger := logging.From(ctx).With("task", name)
	bgCtx := logging.With(context.WithoutCancel(ctx), logger)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in background task",
					"recover", r,
					"stack", string(debug.Stack()))
				sentry.CurrentHub().Clone().Recover(r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("background task failed", "error", err)
			sentry.CaptureException(err)
		}
	}()

	return done
}
