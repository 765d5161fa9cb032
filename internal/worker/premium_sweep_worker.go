package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper runs one expiry-and-reminder pass.
type Sweeper interface {
	SweepOnce(ctx context.Context) error
}

// PremiumSweepWorker drives the Sweeper on a fixed interval in the
// background. It runs a first pass immediately on Start so a restart never
// delays overdue expirations by a full interval.
type PremiumSweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPremiumSweepWorker(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *PremiumSweepWorker {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	return &PremiumSweepWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

func (w *PremiumSweepWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.sweep(workerCtx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				w.sweep(workerCtx)
			}
		}
	}()

	return nil
}

func (w *PremiumSweepWorker) sweep(ctx context.Context) {
	if err := w.sweeper.SweepOnce(ctx); err != nil {
		w.logger.Error("premium sweep failed", zap.Error(err))
	}
}

func (w *PremiumSweepWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
