// Package metric provides OpenTelemetry instruments for burst lines.
// Counters are recorded per stage with the "stage" attribute. Tests should
// use New with a custom metric.MeterProvider to avoid cross-test pollution.
package metric

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all burst metrics.
const meterName = "github.com/pipelined/burst"

// Instrument names.
const (
	ConsumedCounter = "burst.consumed"
	ProducedCounter = "burst.produced"
	CallsCounter    = "burst.calls"
	PaddingCounter  = "burst.padding"
	DroppedCounter  = "burst.dropped"
	BurstsCounter   = "burst.bursts"
	WorkDuration    = "burst.work.duration"
)

// Metrics holds all instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Consumed counts input items consumed by stages.
	Consumed metric.Int64Counter
	// Produced counts output items produced by stages.
	Produced metric.Int64Counter
	// Calls counts work calls.
	Calls metric.Int64Counter
	// Padding counts zero items inserted before bursts.
	Padding metric.Int64Counter
	// Dropped counts idle items consumed between bursts.
	Dropped metric.Int64Counter
	// Bursts counts completed bursts.
	Bursts metric.Int64Counter
	// Duration tracks work call latency.
	Duration metric.Float64Histogram
}

// New creates metrics using provided meter provider.
func New(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}
	if met.Consumed, err = m.Int64Counter(ConsumedCounter,
		metric.WithDescription("Input items consumed by stage."),
	); err != nil {
		return nil, err
	}
	if met.Produced, err = m.Int64Counter(ProducedCounter,
		metric.WithDescription("Output items produced by stage."),
	); err != nil {
		return nil, err
	}
	if met.Calls, err = m.Int64Counter(CallsCounter,
		metric.WithDescription("Work calls by stage."),
	); err != nil {
		return nil, err
	}
	if met.Padding, err = m.Int64Counter(PaddingCounter,
		metric.WithDescription("Zero items inserted before bursts."),
	); err != nil {
		return nil, err
	}
	if met.Dropped, err = m.Int64Counter(DroppedCounter,
		metric.WithDescription("Idle items dropped between bursts."),
	); err != nil {
		return nil, err
	}
	if met.Bursts, err = m.Int64Counter(BurstsCounter,
		metric.WithDescription("Bursts copied."),
	); err != nil {
		return nil, err
	}
	if met.Duration, err = m.Float64Histogram(WorkDuration,
		metric.WithDescription("Latency of work calls."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns package-level metrics created with global meter
// provider.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = New(otel.GetMeterProvider())
		if err != nil {
			panic("metric: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Meter records measures of a single stage. Zero value discards all
// measures.
type Meter struct {
	m     *Metrics
	attrs metric.MeasurementOption
}

// Meter returns a meter for the stage.
func (m *Metrics) Meter(stage string) Meter {
	if m == nil {
		return Meter{}
	}
	return Meter{
		m:     m,
		attrs: metric.WithAttributes(attribute.String("stage", stage)),
	}
}

// Work records a single work call.
func (m Meter) Work(ctx context.Context, produced, consumed int, elapsed time.Duration) {
	if m.m == nil {
		return
	}
	m.m.Calls.Add(ctx, 1, m.attrs)
	m.m.Produced.Add(ctx, int64(produced), m.attrs)
	m.m.Consumed.Add(ctx, int64(consumed), m.attrs)
	m.m.Duration.Record(ctx, elapsed.Seconds(), m.attrs)
}

// Padding records inserted zero items.
func (m Meter) Padding(n int) {
	if m.m == nil || n == 0 {
		return
	}
	m.m.Padding.Add(context.Background(), int64(n), m.attrs)
}

// Dropped records dropped idle items.
func (m Meter) Dropped(n int) {
	if m.m == nil || n == 0 {
		return
	}
	m.m.Dropped.Add(context.Background(), int64(n), m.attrs)
}

// Burst records a completed burst.
func (m Meter) Burst() {
	if m.m == nil {
		return
	}
	m.m.Bursts.Add(context.Background(), 1, m.attrs)
}
