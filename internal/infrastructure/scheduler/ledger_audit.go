package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/tablekit/backoffice/internal/application/inventory"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobKindLedgerAudit compares an item's cached quantity with its ledger
const JobKindLedgerAudit = "ledger_audit"

// LedgerAuditor is the slice of the inventory service the audit needs
type LedgerAuditor interface {
	ListItems(ctx context.Context) ([]inventoryapp.ItemResponse, error)
	VerifyLedger(ctx context.Context, itemID uuid.UUID) (*inventoryapp.LedgerCheckResponse, error)
}

// AuditStats summarizes ledger audit outcomes since start
type AuditStats struct {
	Checked   int
	Drifted   int
	Failed    int
	LastRunAt *time.Time
}

// LedgerAuditExecutor runs ledger_audit jobs
type LedgerAuditExecutor struct {
	auditor LedgerAuditor
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger

	mu    sync.Mutex
	stats AuditStats
}

// NewLedgerAuditExecutor creates an executor backed by auditor
func NewLedgerAuditExecutor(auditor LedgerAuditor, logger *zap.Logger) *LedgerAuditExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerAuditExecutor{
		auditor: auditor,
		metrics: telemetry.NopBusinessMetrics(),
		logger:  logger.Named("ledger_audit"),
	}
}

// SetMetrics sets the business metrics recorder
func (e *LedgerAuditExecutor) SetMetrics(metrics *telemetry.BusinessMetrics) {
	if metrics != nil {
		e.metrics = metrics
	}
}

// Execute verifies one item. Drift is logged and counted, not returned as
// an error: retrying cannot repair it.
func (e *LedgerAuditExecutor) Execute(ctx context.Context, job *Job) error {
	if job.Kind != JobKindLedgerAudit {
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}

	check, err := e.auditor.VerifyLedger(ctx, job.SubjectID)
	if err != nil {
		e.record(func(s *AuditStats) { s.Failed++ })
		e.metrics.RecordLedgerAudit(ctx, telemetry.AuditResultFailed)
		return err
	}

	e.record(func(s *AuditStats) {
		s.Checked++
		if !check.Consistent {
			s.Drifted++
		}
	})
	if check.Consistent {
		e.metrics.RecordLedgerAudit(ctx, telemetry.AuditResultConsistent)
	} else {
		e.metrics.RecordLedgerAudit(ctx, telemetry.AuditResultDrifted)
		e.logger.Warn("Inventory ledger drift detected",
			zap.String("item_id", check.ItemID.String()),
			zap.String("cached_quantity", check.CachedQuantity.String()),
			zap.String("ledger_quantity", check.LedgerQuantity.String()),
			zap.String("drift", check.Drift.String()),
			zap.Int64("transaction_count", check.TransactionCount),
		)
	}
	return nil
}

// Stats returns a snapshot of the audit counters
func (e *LedgerAuditExecutor) Stats() AuditStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *LedgerAuditExecutor) record(fn func(*AuditStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.stats)
}

func (e *LedgerAuditExecutor) markRun(at time.Time) {
	e.record(func(s *AuditStats) { s.LastRunAt = &at })
}

// ParseDailySchedule reads the minute and hour fields of a cron-style
// "minute hour * * *" expression. The remaining fields are ignored.
func ParseDailySchedule(expr string) (hour, minute int, err error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	minute, convErr := strconv.Atoi(parts[0])
	if convErr != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59 in %q", ErrInvalidSchedule, expr)
	}
	hour, convErr = strconv.Atoi(parts[1])
	if convErr != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23 in %q", ErrInvalidSchedule, expr)
	}
	return hour, minute, nil
}

// LedgerAuditTriggerConfig controls when the daily audit fires
type LedgerAuditTriggerConfig struct {
	Hour          int
	Minute        int
	Location      *time.Location
	CheckInterval time.Duration
	MaxRetries    int
}

// LedgerAuditTrigger submits one ledger_audit job per inventory item once a day
type LedgerAuditTrigger struct {
	config    LedgerAuditTriggerConfig
	scheduler *Scheduler
	auditor   LedgerAuditor
	executor  *LedgerAuditExecutor
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewLedgerAuditTrigger creates a trigger. The executor is optional and
// only used to stamp the last run time.
func NewLedgerAuditTrigger(
	config LedgerAuditTriggerConfig,
	scheduler *Scheduler,
	auditor LedgerAuditor,
	executor *LedgerAuditExecutor,
	logger *zap.Logger,
) *LedgerAuditTrigger {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerAuditTrigger{
		config:    config,
		scheduler: scheduler,
		auditor:   auditor,
		executor:  executor,
		logger:    logger.Named("ledger_audit_trigger"),
		now:       time.Now,
	}
}

// Start begins checking the clock
func (t *LedgerAuditTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Ledger audit trigger started",
		zap.String("at", fmt.Sprintf("%02d:%02d", t.config.Hour, t.config.Minute)),
		zap.String("timezone", t.config.Location.String()),
	)
	return nil
}

// Stop stops the trigger loop
func (t *LedgerAuditTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.cancel()
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *LedgerAuditTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

func (t *LedgerAuditTrigger) checkAndTrigger(ctx context.Context) {
	now := t.now().In(t.config.Location)
	if !t.shouldRun(now) {
		return
	}
	if _, err := t.RunNow(ctx); err != nil {
		t.logger.Error("Ledger audit run failed", zap.Error(err))
	}
}

// shouldRun reports whether now is the scheduled minute of a day not yet audited
func (t *LedgerAuditTrigger) shouldRun(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Hour() != t.config.Hour || now.Minute() != t.config.Minute {
		return false
	}
	date := now.Format("2006-01-02")
	if t.lastRunDate == date {
		return false
	}
	t.lastRunDate = date
	return true
}

// RunNow submits an audit job for every inventory item and returns how
// many were queued.
func (t *LedgerAuditTrigger) RunNow(ctx context.Context) (int, error) {
	items, err := t.auditor.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list inventory items: %w", err)
	}

	submitted := 0
	for _, item := range items {
		if err := t.scheduler.SubmitJob(NewJob(JobKindLedgerAudit, item.ID, t.config.MaxRetries)); err != nil {
			t.logger.Warn("Failed to queue ledger audit",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}
	if t.executor != nil {
		t.executor.markRun(t.now())
	}

	t.logger.Info("Ledger audit queued",
		zap.Int("items", len(items)),
		zap.Int("submitted", submitted),
	)
	return submitted, nil
}
