package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SyncLogPruner deletes sync history older than a cutoff
type SyncLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionConfig holds configuration for the sync log retention job
type RetentionConfig struct {
	// RetainFor is how long rows are kept; zero disables the job
	RetainFor time.Duration
	// Interval is how often old rows are pruned
	Interval time.Duration
}

// RetentionJob periodically prunes old sync log rows
type RetentionJob struct {
	config RetentionConfig
	pruner SyncLogPruner
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(config RetentionConfig, pruner SyncLogPruner, logger *zap.Logger) *RetentionJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &RetentionJob{
		config: config,
		pruner: pruner,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether a retention window is configured
func (j *RetentionJob) Enabled() bool {
	return j.config.RetainFor > 0
}

// Start prunes once and then on every interval until ctx is cancelled or Stop is called
func (j *RetentionJob) Start(ctx context.Context) {
	if !j.Enabled() {
		j.logger.Info("Sync log retention disabled")
		return
	}

	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = true
	ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()

	j.wg.Add(1)
	go j.runLoop(ctx)

	j.logger.Info("Sync log retention started",
		zap.Duration("retain_for", j.config.RetainFor),
		zap.Duration("interval", j.config.Interval),
	)
}

// Stop cancels the loop and waits for an in-flight prune, bounded by ctx
func (j *RetentionJob) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	cancel := j.cancel
	j.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("Sync log retention stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *RetentionJob) runLoop(ctx context.Context) {
	defer j.wg.Done()

	j.RunOnce(ctx)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce deletes every row older than the retention window
func (j *RetentionJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.config.RetainFor)
	deleted, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("Failed to prune sync logs", zap.Time("cutoff", cutoff), zap.Error(err))
		}
		return 0, err
	}
	if deleted > 0 {
		j.logger.Info("Pruned sync logs", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
