package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeRegistry struct {
	calls chan struct{}
	err   error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{calls: make(chan struct{}, 1)}
}

func (f *fakeRegistry) PurgeIdle() error {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return f.err
}

type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
}

func newManualTicker() *manualTicker {
	return &manualTicker{
		c:       make(chan time.Time, 1),
		stopped: make(chan struct{}),
	}
}

func (m *manualTicker) C() <-chan time.Time {
	return m.c
}

func (m *manualTicker) Stop() {
	select {
	case <-m.stopped:
		return
	default:
		close(m.stopped)
	}
}

func (m *manualTicker) Tick() {
	select {
	case m.c <- time.Now():
	default:
	}
}

func TestStartIdleSweeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := newManualTicker()
	sessions := newFakeRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stop := startIdleSweeperWithTicker(ctx, logger, sessions, time.Minute, func(time.Duration) sweepTicker {
		return ticker
	})

	ticker.Tick()
	select {
	case <-sessions.calls:
	case <-time.After(time.Second):
		t.Fatal("expected sweep to be invoked")
	}

	cancel()
	stop()

	select {
	case <-ticker.stopped:
	case <-time.After(time.Second):
		t.Fatal("expected ticker to stop after context cancellation")
	}
}

func TestStartIdleSweeperDisabled(t *testing.T) {
	stop := startIdleSweeper(context.Background(), nil, nil, 0)
	stop()
	stop()
}
