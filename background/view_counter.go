// Package background contains work that runs outside the request cycle.
package background

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/forum-go/logger"
)

// ViewStore persists batched view increments, keyed by thread id.
type ViewStore interface {
	IncrementThreadViews(ctx context.Context, deltas map[string]int) error
}

// flushTimeout bounds a single flush, including the final one on Stop.
const flushTimeout = 5 * time.Second

// ViewCounter aggregates thread views in memory and writes them in batches,
// so reading a thread never waits on an UPDATE.
type ViewCounter struct {
	store    ViewStore
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]int

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewViewCounter creates a counter that flushes every interval once started.
func NewViewCounter(store ViewStore, interval time.Duration, log *zap.Logger) *ViewCounter {
	return &ViewCounter{
		store:    store,
		interval: interval,
		log:      logger.OrNop(log),
		pending:  make(map[string]int),
		stopChan: make(chan struct{}),
	}
}

// Record counts one view of threadID.
func (v *ViewCounter) Record(threadID string) {
	v.mu.Lock()
	v.pending[threadID]++
	v.mu.Unlock()
}

// Pending returns the views recorded but not yet flushed for threadID.
func (v *ViewCounter) Pending(threadID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending[threadID]
}

// Flush writes every pending count in one batch. On failure the counts are
// merged back so the next flush retries them.
func (v *ViewCounter) Flush(ctx context.Context) error {
	v.mu.Lock()
	if len(v.pending) == 0 {
		v.mu.Unlock()
		return nil
	}
	batch := v.pending
	v.pending = make(map[string]int)
	v.mu.Unlock()

	if err := v.store.IncrementThreadViews(ctx, batch); err != nil {
		v.mu.Lock()
		for id, n := range batch {
			v.pending[id] += n
		}
		v.mu.Unlock()
		return err
	}

	v.log.Debug("thread views flushed", zap.Int("threads", len(batch)))
	return nil
}

// Start launches the flush loop. Call Stop to end it.
func (v *ViewCounter) Start() {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				v.flushLogged()
			case <-v.stopChan:
				return
			}
		}
	}()
	v.log.Info("view counter started", zap.Duration("interval", v.interval))
}

// Stop ends the flush loop and waits for it, then flushes whatever is still
// pending. It is safe to call more than once, and without Start.
func (v *ViewCounter) Stop() {
	v.stopOnce.Do(func() { close(v.stopChan) })
	v.wg.Wait()
	v.flushLogged()
	v.log.Info("view counter stopped")
}

func (v *ViewCounter) flushLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := v.Flush(ctx); err != nil {
		v.log.Error("failed to flush thread views", zap.Error(err))
	}
}
