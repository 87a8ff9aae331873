package reports

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kantina/pkg/logger"
)

func TestRunnerSupersedesSameKey(t *testing.T) {
	r := NewRunner(logger.Default())
	defer r.Close()

	firstCancelled := make(chan struct{})
	started := make(chan struct{})
	ok := r.Submit(context.Background(), "turnover", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(firstCancelled)
		return ctx.Err()
	})
	require.True(t, ok)
	<-started

	done := make(chan struct{})
	ok = r.Submit(context.Background(), "turnover", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.True(t, ok)

	select {
	case <-firstCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("first run was not cancelled by the second submit")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second run did not finish")
	}
}

func TestRunnerIndependentKeys(t *testing.T) {
	r := NewRunner(logger.Default())
	defer r.Close()

	var cancelled atomic.Bool
	release := make(chan struct{})
	r.Submit(context.Background(), "aging", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		case <-release:
		}
		return nil
	})

	done := make(chan struct{})
	r.Submit(context.Background(), "balances", func(ctx context.Context) error {
		close(done)
		return nil
	})
	<-done

	close(release)
	require.False(t, cancelled.Load())
}

func TestRunnerRejectsSubmitAfterClose(t *testing.T) {
	r := NewRunner(logger.Default())
	r.Close()
	ok := r.Submit(context.Background(), "turnover", func(ctx context.Context) error { return nil })
	require.False(t, ok)
}

func TestRunnerCloseWaitsForInflight(t *testing.T) {
	r := NewRunner(logger.Default())

	var finished atomic.Bool
	r.Submit(context.Background(), "turnover", func(ctx context.Context) error {
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	})

	r.Close()
	require.True(t, finished.Load())
}
