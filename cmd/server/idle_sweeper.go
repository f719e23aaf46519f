package main

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type idleSweeper interface {
	PurgeIdle() error
}

type sweepTicker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

type tickerFactory func(time.Duration) sweepTicker

// startIdleSweeper periodically removes idle-expired sessions from the
// backing store. Lazy eviction on lookup already keeps expired sessions
// unusable; the sweeper keeps persistent stores from accumulating rows
// for tokens nobody will present again.
func startIdleSweeper(ctx context.Context, logger *slog.Logger, sessions idleSweeper, interval time.Duration) func() {
	return startIdleSweeperWithTicker(ctx, logger, sessions, interval, func(d time.Duration) sweepTicker {
		return timeTicker{ticker: time.NewTicker(d)}
	})
}

func startIdleSweeperWithTicker(
	ctx context.Context,
	logger *slog.Logger,
	sessions idleSweeper,
	interval time.Duration,
	newTicker tickerFactory,
) func() {
	if sessions == nil || interval <= 0 {
		return func() {}
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	ticker := newTicker(interval)
	done := make(chan struct{})
	go func() {
		defer func() {
			ticker.Stop()
			close(done)
		}()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C():
				if err := sessions.PurgeIdle(); err != nil && logger != nil {
					logger.Error("failed to purge idle sessions", "error", err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
