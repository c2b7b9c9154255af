package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of the back-office metrics
const MeterName = "github.com/tablekit/backoffice"

// ErrMeterNil is returned when NewBusinessMetrics gets no meter
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

// Audit results
const (
	AuditResultConsistent = "consistent"
	AuditResultDrifted    = "drifted"
	AuditResultFailed     = "failed"
)

// BusinessMetrics records order flow, stock alerts and ledger audit outcomes
type BusinessMetrics struct {
	orderCreatedTotal       *Counter
	orderAmountCentsTotal   *Counter
	orderAmount             *Histogram
	orderStatusChangedTotal *Counter
	orderDeletedTotal       *Counter
	lowStockTotal           *Counter
	ledgerAuditTotal        *Counter
	ledgerDriftedTotal      *Counter
	ledgerAuditFailedTotal  *Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		dst         **Counter
		name, descr string
		unit        string
	}{
		{&bm.orderCreatedTotal, "backoffice_order_created_total", "Orders opened", "{orders}"},
		{&bm.orderAmountCentsTotal, "backoffice_order_amount_cents_total", "Sum of order totals in cents", "{cents}"},
		{&bm.orderStatusChangedTotal, "backoffice_order_status_changed_total", "Order status transitions", "{transitions}"},
		{&bm.orderDeletedTotal, "backoffice_order_deleted_total", "Orders deleted by managers", "{orders}"},
		{&bm.lowStockTotal, "backoffice_inventory_low_stock_total", "Stock movements leaving an item at or below its minimum", "{movements}"},
		{&bm.ledgerAuditTotal, "backoffice_ledger_audit_total", "Ledger audit checks by result", "{checks}"},
		{&bm.ledgerDriftedTotal, "backoffice_ledger_drifted_total", "Items whose cached quantity differs from the ledger", "{items}"},
		{&bm.ledgerAuditFailedTotal, "backoffice_ledger_audit_failed_total", "Ledger audit checks that could not complete", "{checks}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.descr, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.orderAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "backoffice_order_amount",
		Description: "Distribution of order totals",
		Unit:        "{currency}",
		Boundaries:  OrderAmountBuckets,
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// NopBusinessMetrics returns metrics backed by a no-op meter
func NopBusinessMetrics() *BusinessMetrics {
	bm, err := NewBusinessMetrics(noop.NewMeterProvider().Meter(MeterName))
	if err != nil {
		panic(err)
	}
	return bm
}

// RecordOrderCreated counts a new order
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context) {
	bm.orderCreatedTotal.Inc(ctx)
}

// RecordOrderWithAmount counts a new order and adds its total to the
// amount counter and distribution
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx)
	bm.orderAmountCentsTotal.Add(ctx, amount.Shift(2).IntPart())
	bm.orderAmount.Record(ctx, amount.InexactFloat64())
}

// RecordOrderStatusChange counts a transition
func (bm *BusinessMetrics) RecordOrderStatusChange(ctx context.Context, from, to string) {
	bm.orderStatusChangedTotal.Inc(ctx, AttrFromStatus.String(from), AttrOrderStatus.String(to))
}

// RecordOrderDeleted counts a deleted order by the status it had
func (bm *BusinessMetrics) RecordOrderDeleted(ctx context.Context, status string) {
	bm.orderDeletedTotal.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordLowStock counts a movement that left an item at or below its minimum
func (bm *BusinessMetrics) RecordLowStock(ctx context.Context, txType string) {
	bm.lowStockTotal.Inc(ctx, AttrTxType.String(txType))
}

// RecordLedgerAudit counts one audit check. Drifted and failed checks are
// also counted on their own instruments.
func (bm *BusinessMetrics) RecordLedgerAudit(ctx context.Context, result string) {
	bm.ledgerAuditTotal.Inc(ctx, AttrAuditResult.String(result))
	switch result {
	case AuditResultDrifted:
		bm.ledgerDriftedTotal.Inc(ctx)
	case AuditResultFailed:
		bm.ledgerAuditFailedTotal.Inc(ctx)
	}
}
