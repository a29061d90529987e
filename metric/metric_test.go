package metric_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pipelined/burst/metric"
)

func newTestMetrics(t *testing.T) (*metric.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := metric.New(mp)
	require.NoError(t, err)
	return m, reader
}

// sum returns counter value for the stage.
func sum(t *testing.T, reader *sdkmetric.ManualReader, name, stage string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range data.DataPoints {
				if v, ok := dp.Attributes.Value("stage"); ok && v.AsString() == stage {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestMeter(t *testing.T) {
	m, reader := newTestMetrics(t)
	delay := m.Meter("delay")
	shift := m.Meter("shift")

	delay.Work(context.Background(), 10, 3, time.Millisecond)
	delay.Work(context.Background(), 5, 0, time.Millisecond)
	delay.Padding(12)
	delay.Padding(0)
	delay.Dropped(3)
	delay.Burst()
	shift.Work(context.Background(), 7, 7, time.Millisecond)

	assert.Equal(t, int64(15), sum(t, reader, metric.ProducedCounter, "delay"))
	assert.Equal(t, int64(3), sum(t, reader, metric.ConsumedCounter, "delay"))
	assert.Equal(t, int64(2), sum(t, reader, metric.CallsCounter, "delay"))
	assert.Equal(t, int64(12), sum(t, reader, metric.PaddingCounter, "delay"))
	assert.Equal(t, int64(3), sum(t, reader, metric.DroppedCounter, "delay"))
	assert.Equal(t, int64(1), sum(t, reader, metric.BurstsCounter, "delay"))
	assert.Equal(t, int64(7), sum(t, reader, metric.ProducedCounter, "shift"))
}

func TestZeroMeter(t *testing.T) {
	var nilMetrics *metric.Metrics
	m := nilMetrics.Meter("noop")
	assert.NotPanics(t, func() {
		m.Work(context.Background(), 1, 1, time.Second)
		m.Padding(1)
		m.Dropped(1)
		m.Burst()
	})
	assert.NotNil(t, metric.Default())
}
