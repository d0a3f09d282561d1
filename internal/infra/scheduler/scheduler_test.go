//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestScheduler_RunsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	l := zerolog.Nop()
	s := NewScheduler("count", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("failures do not stop the loop")
	}, &l)

	s.Start(context.Background())
	s.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	n := runs.Load()
	if n < 2 {
		t.Fatalf("expected several runs, got %d", n)
	}
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != n {
		t.Error("job ran after Stop")
	}
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	l := zerolog.Nop()
	s := NewScheduler("noop", time.Hour, func(ctx context.Context) error { return nil }, &l)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	l := zerolog.Nop()
	NewScheduler("idle", 0, func(ctx context.Context) error { return nil }, &l).Stop()
}
