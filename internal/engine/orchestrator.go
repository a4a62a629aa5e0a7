// Package engine sequences the pipeline: list messages, filter seen ones,
// batch, classify, repair, match, persist, aggregate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/riteshshukladev/FinSight/internal/aggregate"
	"github.com/riteshshukladev/FinSight/internal/classify"
	"github.com/riteshshukladev/FinSight/internal/common"
	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/riteshshukladev/FinSight/internal/source"
)

const (
	defaultBatchSize   = 4
	defaultMaxMessages = 500
	defaultBaseDelay   = 500 * time.Millisecond
	defaultStepDelay   = 250 * time.Millisecond
	defaultMaxDelay    = 2 * time.Second
)

// Config configures a sync run.
type Config struct {
	BatchSize   int
	MaxMessages int
	BaseDelay   time.Duration
	StepDelay   time.Duration
	MaxDelay    time.Duration
	// Prefilter screens messages by bank sender and transaction keywords
	// before they count against the dedup index.
	Prefilter bool
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = defaultMaxMessages
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.StepDelay <= 0 {
		c.StepDelay = defaultStepDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	return c
}

// RunSummary describes the outcome of one sync run.
type RunSummary struct {
	TotalMessages  int
	UnseenMessages int
	Batches        int
	FailedBatches  int
	NewRecords     int
}

// Orchestrator owns the pipeline state: the store, the progress log and the
// processing flag. It is an explicitly constructed instance injected into
// callers, never ambient global state. The ledger has a single writer (the
// orchestrator); reads go through the store and only ever observe fully
// persisted batches.
type Orchestrator struct {
	store   Store
	source  source.MessageSource
	client  classify.Client
	logger  *slog.Logger
	onBatch func(done, total int)
	cfg     Config

	mu         sync.Mutex
	processing bool
	loading    bool

	logMu       sync.Mutex
	progressLog []string
}

// NewOrchestrator creates a sync orchestrator.
func NewOrchestrator(store Store, src source.MessageSource, client classify.Client, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:  store,
		source: src,
		client: client,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// OnBatch registers a callback invoked after every dispatched batch, with
// the number of completed batches and the total. Used for CLI progress.
func (o *Orchestrator) OnBatch(fn func(done, total int)) {
	o.onBatch = fn
}

// Processing reports whether a sync run is currently executing.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// Loading reports whether the orchestrator is reading from the message
// source or persisting results.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// ProgressLog returns a copy of the append-only progress log for the
// current or most recent run.
func (o *Orchestrator) ProgressLog() []string {
	o.logMu.Lock()
	defer o.logMu.Unlock()
	out := make([]string, len(o.progressLog))
	copy(out, o.progressLog)
	return out
}

func (o *Orchestrator) appendLog(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	o.logMu.Lock()
	o.progressLog = append(o.progressLog, line)
	o.logMu.Unlock()
	o.logger.Info(line)
}

func (o *Orchestrator) resetLog() {
	o.logMu.Lock()
	o.progressLog = o.progressLog[:0]
	o.logMu.Unlock()
}

// Refresh runs the pipeline once. A refresh requested while another run is
// executing is a no-op returning ErrSyncInProgress: the single-flight
// guarantee that keeps a periodic auto-refresh and a manual refresh from
// ever running simultaneously.
func (o *Orchestrator) Refresh(ctx context.Context) (*RunSummary, error) {
	return o.run(ctx, false)
}

// ForceRefresh clears the ledger, the dedup index and the sync marker, then
// replays the whole pipeline from scratch.
func (o *Orchestrator) ForceRefresh(ctx context.Context) (*RunSummary, error) {
	return o.run(ctx, true)
}

func (o *Orchestrator) run(ctx context.Context, force bool) (*RunSummary, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return nil, common.ErrSyncInProgress
	}
	o.processing = true
	o.loading = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.processing = false
		o.loading = false
		o.mu.Unlock()
	}()

	o.resetLog()

	if force {
		if err := o.store.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear state: %w", err)
		}
		o.appendLog("Cleared cached transactions, starting full re-sync")
	}

	messages, err := o.source.List(ctx, time.Time{}, o.cfg.MaxMessages)
	if err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if o.cfg.Prefilter {
		messages = source.Prefilter(messages)
	}

	unseen, err := o.store.FilterUnseen(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to filter seen messages: %w", err)
	}

	summary := &RunSummary{
		TotalMessages:  len(messages),
		UnseenMessages: len(unseen),
	}

	o.appendLog("Found %d messages, %d new", len(messages), len(unseen))

	o.mu.Lock()
	o.loading = false
	o.mu.Unlock()

	batches := planBatches(unseen, o.cfg.BatchSize)
	summary.Batches = len(batches)

	for i, batch := range batches {
		if delay := dispatchDelay(i, o.cfg.BaseDelay, o.cfg.StepDelay, o.cfg.MaxDelay); delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := o.processBatch(ctx, batch, summary); err != nil {
			// Only cancellation aborts the run; batch failures are
			// contained and the next batch proceeds.
			return summary, err
		}

		if o.onBatch != nil {
			o.onBatch(i+1, len(batches))
		}
	}

	if err := o.finalize(ctx, summary); err != nil {
		return summary, err
	}

	o.appendLog("Sync complete: %d/%d batches succeeded, %d new transactions",
		summary.Batches-summary.FailedBatches, summary.Batches, summary.NewRecords)

	return summary, nil
}

// processBatch classifies one batch and persists its outcome. Fingerprints
// are committed once the batch completes, successfully or by exhausting
// retries, so those messages are never re-offered. If the run is torn down
// mid-batch nothing is committed and the next run simply re-offers the
// batch.
func (o *Orchestrator) processBatch(ctx context.Context, batch Batch, summary *RunSummary) error {
	candidates, err := o.client.ClassifyBatch(ctx, batch.Messages)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		summary.FailedBatches++
		batchErr := &common.BatchError{BatchNumber: batch.Number, Err: err}
		o.appendLog("Batch %d failed: %v", batch.Number, err)
		common.LogError(batchErr, "batch classification failed", common.Fields{
			"batch":    batch.Number,
			"messages": len(batch.Messages),
		})

		// The batch completed by exhausting its retries; its messages
		// still enter the dedup index.
		return o.commitBatch(ctx, batch)
	}

	records := classify.MatchCandidates(candidates, batch.Messages, batch.Number)

	if len(records) > 0 {
		if err := o.store.SaveRecords(ctx, records); err != nil {
			return fmt.Errorf("failed to persist batch %d: %w", batch.Number, err)
		}
	}

	if err := o.commitBatch(ctx, batch); err != nil {
		return err
	}

	summary.NewRecords += len(records)
	o.appendLog("Batch %d/%d: %d of %d messages were transactions",
		batch.Number, summary.Batches, len(records), len(batch.Messages))

	return nil
}

func (o *Orchestrator) commitBatch(ctx context.Context, batch Batch) error {
	fingerprints := make([]model.Fingerprint, len(batch.Messages))
	for i, m := range batch.Messages {
		fingerprints[i] = m.Fingerprint()
	}
	if err := o.store.CommitFingerprints(ctx, fingerprints); err != nil {
		return fmt.Errorf("failed to commit fingerprints for batch %d: %w", batch.Number, err)
	}
	return nil
}

func (o *Orchestrator) finalize(ctx context.Context, summary *RunSummary) error {
	o.mu.Lock()
	o.loading = true
	o.mu.Unlock()

	ledger, err := o.store.GetLedger(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	bank, upi := 0, 0
	for _, r := range ledger {
		switch r.Category {
		case model.CategoryBank:
			bank++
		case model.CategoryUPI:
			upi++
		}
	}

	if err := o.store.SetLastSync(ctx, time.Now(), summary.TotalMessages, bank, upi); err != nil {
		return fmt.Errorf("failed to record sync marker: %w", err)
	}

	return nil
}

// Ledger returns the full persisted ledger, date descending.
func (o *Orchestrator) Ledger(ctx context.Context) ([]model.TransactionRecord, error) {
	return o.store.GetLedger(ctx)
}

// BankSlice returns the BANK projection of the ledger.
func (o *Orchestrator) BankSlice(ctx context.Context) ([]model.TransactionRecord, error) {
	return o.store.GetLedgerByCategory(ctx, model.CategoryBank)
}

// UPISlice returns the UPI projection of the ledger.
func (o *Orchestrator) UPISlice(ctx context.Context) ([]model.TransactionRecord, error) {
	return o.store.GetLedgerByCategory(ctx, model.CategoryUPI)
}

// GetSyncInfo returns the last sync marker and counts.
func (o *Orchestrator) GetSyncInfo(ctx context.Context) (model.SyncInfo, error) {
	return o.store.GetSyncInfo(ctx)
}

// GetTransactionStats returns per-category debit/credit totals for the
// persisted ledger.
func (o *Orchestrator) GetTransactionStats(ctx context.Context) (model.TransactionStats, error) {
	ledger, err := o.store.GetLedger(ctx)
	if err != nil {
		return model.TransactionStats{}, err
	}
	return aggregate.Stats(ledger), nil
}

// GetWindows returns the four standard window summaries for the persisted
// ledger.
func (o *Orchestrator) GetWindows(ctx context.Context, now time.Time) (aggregate.TransactionWindows, error) {
	ledger, err := o.store.GetLedger(ctx)
	if err != nil {
		return aggregate.TransactionWindows{}, err
	}
	return aggregate.Windows(ledger, now), nil
}
