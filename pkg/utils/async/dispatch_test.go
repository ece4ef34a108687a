package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/utils/async"
	"github.com/m-mizutani/takeout/pkg/utils/logging"
)

// lockedBuffer collects log output written from the dispatched goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger() (*slog.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background task did not finish")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("runs handler and closes done", func(t *testing.T) {
		var ran bool
		done := async.Dispatch(context.Background(), "unpack", func(ctx context.Context) error {
			ran = true
			return nil
		})
		wait(t, done)
		gt.True(t, ran)
	})

	t.Run("logs returned error with task name", func(t *testing.T) {
		logger, buf := newLogger()
		ctx := logging.With(context.Background(), logger)

		done := async.Dispatch(ctx, "prune", func(ctx context.Context) error {
			return errors.New("permission denied")
		})
		wait(t, done)

		gt.S(t, buf.String()).Contains("background task failed")
		gt.S(t, buf.String()).Contains("permission denied")
		gt.S(t, buf.String()).Contains("task=prune")
	})

	t.Run("recovers from panic and logs stack", func(t *testing.T) {
		logger, buf := newLogger()
		ctx := logging.With(context.Background(), logger)

		done := async.Dispatch(ctx, "flatten-images", func(ctx context.Context) error {
			panic("broken archive")
		})
		wait(t, done)

		out := buf.String()
		gt.S(t, out).Contains("panic in background task")
		gt.S(t, out).Contains("broken archive")
		gt.S(t, out).Contains("dispatch_test.go")
	})

	t.Run("handler logger carries task name", func(t *testing.T) {
		logger, buf := newLogger()
		ctx := logging.With(context.Background(), logger)

		done := async.Dispatch(ctx, "collapse", func(ctx context.Context) error {
			logging.From(ctx).Info("sweeping")
			return nil
		})
		wait(t, done)

		gt.S(t, buf.String()).Contains("msg=sweeping task=collapse")
	})

	t.Run("handler context survives parent cancel", func(t *testing.T) {
		type key struct{}
		ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "kept"))
		release := make(chan struct{})

		var ctxErr error
		var value any
		done := async.Dispatch(ctx, "report", func(ctx context.Context) error {
			<-release
			ctxErr = ctx.Err()
			value = ctx.Value(key{})
			return nil
		})

		cancel()
		close(release)
		wait(t, done)

		gt.NoError(t, ctxErr)
		gt.Equal(t, value, any("kept"))
	})
}
