// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/wolvespetstore/petstore/pkg/errutil"
)

// DefaultSweepInterval is how often expired sessions are purged.
const DefaultSweepInterval = time.Hour

// ExpiredSessionPurger deletes expired sessions. *Service implements it.
type ExpiredSessionPurger interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically deletes expired sessions. It is storage hygiene
// only: Resolve rejects expired sessions whether or not they were swept.
type Sweeper struct {
	purger   ExpiredSessionPurger
	interval time.Duration
	logger   *slog.Logger
	onSweep  func(deleted int64)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper. onSweep, if non-nil, is called with the
// number of deleted sessions after each successful cycle.
func NewSweeper(purger ExpiredSessionPurger, interval time.Duration, logger *slog.Logger, onSweep func(int64)) (*Sweeper, error) {
	if purger == nil {
		return nil, oops.Code("SWEEPER_INVALID_CONFIG").Errorf("purger is required")
	}
	if interval <= 0 {
		return nil, oops.Code("SWEEPER_INVALID_CONFIG").
			With("interval", interval.String()).
			Errorf("sweep interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		purger:   purger,
		interval: interval,
		logger:   logger,
		onSweep:  onSweep,
	}, nil
}

// RunOnce executes a single sweep cycle.
func (w *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := w.purger.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		w.logger.InfoContext(ctx, "swept expired sessions", "count", deleted)
	}
	if w.onSweep != nil {
		w.onSweep(deleted)
	}
	return deleted, nil
}

// Start begins periodic sweeping. Calling Start on a running sweeper is a no-op.
func (w *Sweeper) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the sweeper and waits for the current cycle to finish.
func (w *Sweeper) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Sweeper) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				errutil.LogError(w.logger, "session sweep failed", err)
			}
		}
	}
}
