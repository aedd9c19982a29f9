package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/petzadopt/internal/service"
)

// Reconciler is the ledger surface the reconciler job drives
type Reconciler interface {
	Reconcile(ctx context.Context, campaignID string, dryRun bool) (*service.ReconcileResult, error)
	ReconcileAll(ctx context.Context, dryRun bool) ([]*service.ReconcileResult, error)
}

// LedgerReconciler repairs campaign totals after ledger writes whose outcome
// was unknown.
// - Drains the reconcile queue on every tick and rewrites drifted totals
// - Re-queues campaigns whose repair failed, for the next tick
// - Optionally audits every campaign once at startup without writing
type LedgerReconciler struct {
	ledger         Reconciler
	queue          *service.ReconcileQueue
	interval       time.Duration
	batch          int
	auditOnStartup bool
	logger         *slog.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	running        bool
	mu             sync.Mutex
}

// LedgerReconcilerConfig holds configuration for the reconciler job
type LedgerReconcilerConfig struct {
	Ledger         Reconciler
	Queue          *service.ReconcileQueue
	Interval       time.Duration // default 1 minute
	Batch          int           // campaigns per tick, default 100
	AuditOnStartup bool
	Logger         *slog.Logger
}

// NewLedgerReconciler creates a new reconciler job
func NewLedgerReconciler(cfg LedgerReconcilerConfig) *LedgerReconciler {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LedgerReconciler{
		ledger:         cfg.Ledger,
		queue:          cfg.Queue,
		interval:       cfg.Interval,
		batch:          cfg.Batch,
		auditOnStartup: cfg.AuditOnStartup,
		logger:         cfg.Logger.With("job", "ledger_reconciler"),
		stopCh:         make(chan struct{}),
	}
}

// Start begins the reconciler job
func (j *LedgerReconciler) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	j.logger.Info("ledger reconciler started", "interval", j.interval, "batch", j.batch)
}

// Stop gracefully stops the reconciler job, waiting for a tick in progress
func (j *LedgerReconciler) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info("ledger reconciler stopped")
}

// IsRunning returns whether the job is running
func (j *LedgerReconciler) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *LedgerReconciler) run() {
	defer j.wg.Done()

	if j.auditOnStartup {
		j.withTimeout(func(ctx context.Context) error {
			_, err := j.Audit(ctx)
			return err
		})
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.withTimeout(j.RunOnce)
		case <-j.stopCh:
			return
		}
	}
}

func (j *LedgerReconciler) withTimeout(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := fn(ctx); err != nil {
		j.logger.Error("ledger reconciliation failed", "error", err)
	}
}

// RunOnce repairs up to one batch of queued campaigns. Campaigns whose repair
// failed go back on the queue; deleted campaigns are dropped.
func (j *LedgerReconciler) RunOnce(ctx context.Context) error {
	ids := j.queue.Drain(j.batch)
	if len(ids) == 0 {
		return nil
	}

	var errs []error
	repaired := 0
	for _, id := range ids {
		result, err := j.ledger.Reconcile(ctx, id, false)
		switch {
		case err == nil:
			if result.Changed {
				repaired++
			}
		case errors.Is(err, service.ErrCampaignNotFound):
			j.logger.Info("dropping reconcile of deleted campaign", "campaign_id", id)
		default:
			if !j.queue.Push(id) {
				j.logger.Warn("campaign not re-queued", "campaign_id", id, "queued", j.queue.Len())
			}
			errs = append(errs, err)
		}
	}

	j.logger.Info("reconcile batch done",
		"campaigns", len(ids),
		"repaired", repaired,
		"failed", len(errs),
	)
	return errors.Join(errs...)
}

// Audit compares every campaign total with its live payments without writing
// and returns the campaigns that drifted.
func (j *LedgerReconciler) Audit(ctx context.Context) ([]*service.ReconcileResult, error) {
	drifted, err := j.ledger.ReconcileAll(ctx, true)
	for _, r := range drifted {
		j.logger.Warn("campaign total drifted",
			"campaign_id", r.CampaignID,
			"stored", r.Previous.String(),
			"payments_sum", r.Current.String(),
		)
	}
	j.logger.Info("ledger audit done", "drifted", len(drifted))
	return drifted, err
}
