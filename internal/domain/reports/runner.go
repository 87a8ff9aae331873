package reports

import (
	"context"
	"errors"
	"sync"

	"kantina/pkg/logger"
)

// Runner executes report computations in the background, one in-flight
// computation per key. Submitting a key that is already running cancels
// the older run first, so a stale request never overwrites a newer
// result.
type Runner struct {
	log *logger.Logger

	mu       sync.Mutex
	inflight map[string]*run
	wg       sync.WaitGroup
	closed   bool
}

type run struct {
	cancel context.CancelFunc
}

func NewRunner(log *logger.Logger) *Runner {
	return &Runner{
		log:      log.WithComponent("report-runner"),
		inflight: make(map[string]*run),
	}
}

// Submit starts fn in the background, superseding any in-flight run for
// the same key. fn must honor ctx cancellation. Returns false if the
// runner is shut down.
func (r *Runner) Submit(ctx context.Context, key string, fn func(context.Context) error) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if prev, ok := r.inflight[key]; ok {
		prev.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	token := &run{cancel: cancel}
	r.inflight[key] = token
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			if r.inflight[key] == token {
				delete(r.inflight, key)
			}
			r.mu.Unlock()
			cancel()
		}()

		err := fn(runCtx)
		switch {
		case err == nil:
			r.log.WithContext(runCtx).Debugw("report computation finished", "key", key)
		case errors.Is(err, context.Canceled):
			r.log.WithContext(runCtx).Debugw("report computation superseded", "key", key)
		default:
			r.log.WithContext(runCtx).Errorw("report computation failed", "key", key, "error", err)
		}
	}()
	return true
}

// Close cancels every in-flight computation and waits for them to
// return.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	for key, rn := range r.inflight {
		rn.cancel()
		delete(r.inflight, key)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
