// Package telemetrytest provides business metrics backed by an in-memory
// reader for use in tests.
package telemetrytest

import (
	"context"
	"testing"

	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Recorder collects the instruments registered by BusinessMetrics
type Recorder struct {
	Metrics *telemetry.BusinessMetrics

	t      testing.TB
	reader *sdkmetric.ManualReader
}

// NewRecorder creates business metrics on a manual reader
func NewRecorder(t testing.TB) *Recorder {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(provider.Meter(telemetry.MeterName))
	if err != nil {
		t.Fatalf("failed to create business metrics: %v", err)
	}
	return &Recorder{Metrics: bm, t: t, reader: reader}
}

func (r *Recorder) find(name string) (metricdata.Metrics, bool) {
	r.t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(context.Background(), &rm); err != nil {
		r.t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// Counter sums the data points of the named counter that carry all attrs.
// An instrument that was never recorded reads as zero.
func (r *Recorder) Counter(name string, attrs ...attribute.KeyValue) int64 {
	r.t.Helper()
	m, ok := r.find(name)
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		r.t.Fatalf("%s is not an int64 counter", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if matches(dp.Attributes, attrs) {
			total += dp.Value
		}
	}
	return total
}

// HistogramCount returns how many values the named histogram recorded
func (r *Recorder) HistogramCount(name string) uint64 {
	r.t.Helper()
	m, ok := r.find(name)
	if !ok {
		return 0
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		r.t.Fatalf("%s is not a float64 histogram", name)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	return count
}

func matches(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
