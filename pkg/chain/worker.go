package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/internal/metrics"
	"github.com/roadguard/reporter-middleware/pkg/report"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

// WorkerConfig controls the anchoring loop.
type WorkerConfig struct {
	Interval   time.Duration `default:"30s"`
	BatchSize  int           `default:"25"`
	MaxRetries int           `default:"3"`
}

// Worker periodically drains pending reports and anchors their digests
// on-chain. Reports that keep failing are moved to the terminal failed state
// after MaxRetries attempts.
type Worker struct {
	config   WorkerConfig
	store    reportstore.Store
	anchorer Anchorer
	logger   *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates an anchor worker. Zero config fields fall back to defaults.
func NewWorker(cfg WorkerConfig, store reportstore.Store, anchorer Anchorer, logger *zap.Logger) (*Worker, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply worker defaults: %w", err)
	}

	return &Worker{
		config:   cfg,
		store:    store,
		anchorer: anchorer,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start launches the anchoring loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting anchor worker",
		zap.Duration("interval", w.config.Interval),
		zap.Int("batch_size", w.config.BatchSize))

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker and waits for the current batch to finish.
func (w *Worker) Stop() {
	w.logger.Info("Stopping anchor worker")
	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info("Anchor worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.anchorPending(ctx); err != nil {
				w.logger.Error("Anchor pass failed", zap.Error(err))
			}
		}
	}
}

// anchorPending anchors one batch of pending reports. Failures on individual
// reports are recorded per report and do not abort the batch.
func (w *Worker) anchorPending(ctx context.Context) error {
	pending, err := w.store.ListReports(ctx,
		reportstore.WithStatus(report.StatusPending),
		reportstore.WithLimit(w.config.BatchSize))
	if err != nil {
		return fmt.Errorf("failed to list pending reports: %w", err)
	}

	metrics.PendingReports.Set(float64(len(pending)))
	if len(pending) == 0 {
		return nil
	}

	w.logger.Info("Anchoring pending reports", zap.Int("count", len(pending)))

	for _, r := range pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		default:
		}
		w.anchorOne(ctx, r)
	}
	return nil
}

func (w *Worker) anchorOne(ctx context.Context, r *report.Report) {
	digest, err := ReportDigest(r)
	if err != nil {
		// Encoding never recovers on retry, fail the report immediately.
		w.logger.Error("Failed to encode report, marking failed",
			zap.String("id", r.ID), zap.Error(err))
		w.failReport(ctx, r.ID, err)
		return
	}

	start := time.Now()
	txHash, err := w.anchorer.AnchorReport(ctx, digest)
	metrics.AnchorDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ReportsAnchored.WithLabelValues("error").Inc()
		w.logger.Warn("Failed to anchor report",
			zap.String("id", r.ID),
			zap.Int("retry_count", r.RetryCount),
			zap.Error(err))

		if r.RetryCount+1 >= w.config.MaxRetries {
			w.failReport(ctx, r.ID, err)
			return
		}
		if err := w.store.RecordAnchorFailure(ctx, r.ID, err.Error()); err != nil {
			w.logger.Error("Failed to record anchor failure",
				zap.String("id", r.ID), zap.Error(err))
		}
		return
	}

	if err := w.store.MarkReportAnchored(ctx, r.ID, txHash.Hex()); err != nil {
		w.logger.Error("Failed to mark report anchored",
			zap.String("id", r.ID),
			zap.String("tx_hash", txHash.Hex()),
			zap.Error(err))
		return
	}

	metrics.ReportsAnchored.WithLabelValues("success").Inc()
	w.logger.Info("Report anchored",
		zap.String("id", r.ID),
		zap.String("tx_hash", txHash.Hex()),
		zap.String("digest", digest.Hex()))
}

func (w *Worker) failReport(ctx context.Context, id string, cause error) {
	metrics.ReportsAnchored.WithLabelValues("failed").Inc()
	if err := w.store.MarkReportFailed(ctx, id, cause.Error()); err != nil {
		w.logger.Error("Failed to mark report failed",
			zap.String("id", id), zap.Error(err))
	}
}
